package safec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileSet_InternIsStable(t *testing.T) {
	fs := NewFileSet()
	a := fs.Intern("main.sc")
	b := fs.Intern("util.sc")
	c := fs.Intern("main.sc")

	assert.Equal(t, a, c, "interning the same path twice must return the same id")
	assert.NotEqual(t, a, b)
	assert.Equal(t, "main.sc", fs.Name(a))
	assert.Equal(t, "util.sc", fs.Name(b))
}

func TestFileSet_NameUnknown(t *testing.T) {
	fs := NewFileSet()
	assert.Equal(t, "<unknown>", fs.Name(FileID(42)))
	assert.Equal(t, "<unknown>", fs.Name(unknownFileID))
}

func TestSpan_String(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		expected string
	}{
		{
			name:     "single point",
			span:     NewSpan(Location{Line: 3, Column: 4}, Location{Line: 3, Column: 4}),
			expected: "3:4",
		},
		{
			name:     "same line range",
			span:     NewSpan(Location{Line: 3, Column: 4}, Location{Line: 3, Column: 9}),
			expected: "3:4..9",
		},
		{
			name:     "multi line range",
			span:     NewSpan(Location{Line: 3, Column: 4}, Location{Line: 5, Column: 1}),
			expected: "3:4..5:1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.span.String())
		})
	}
}

func TestLineIndex_LocationAt(t *testing.T) {
	input := []byte("int x;\nint y;\nint z;\n")
	li := NewLineIndex(input)

	loc := li.LocationAt(0, 0)
	assert.Equal(t, int32(1), loc.Line)
	assert.Equal(t, int32(1), loc.Column)

	// 'i' of the second "int" is right after the first newline.
	secondLineStart := 7
	loc = li.LocationAt(0, secondLineStart)
	assert.Equal(t, int32(2), loc.Line)
	assert.Equal(t, int32(1), loc.Column)

	loc = li.LocationAt(0, secondLineStart+4)
	assert.Equal(t, int32(2), loc.Line)
	assert.Equal(t, int32(5), loc.Column)
}

func TestLineIndex_LocationAtClampsOutOfRange(t *testing.T) {
	input := []byte("abc")
	li := NewLineIndex(input)

	assert.NotPanics(t, func() {
		li.LocationAt(0, -5)
		li.LocationAt(0, 1000)
	})
}
