package safec

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// diagnosticMessages reduces a Diagnostics sink to plain strings so
// cmp.Diff never has to compare unexported fields buried inside a
// Diagnostic's Span or any Type it happens to reference.
func diagnosticMessages(d *Diagnostics) []string {
	var out []string
	for _, item := range d.Diagnostics() {
		out = append(out, item.Severity.String()+": "+item.Message)
	}
	return out
}

func TestDiagnostics_ErrorCounting(t *testing.T) {
	d := NewDiagnostics()
	span := NewSpan(Location{Line: 1, Column: 1}, Location{Line: 1, Column: 1})

	d.Note("a.sc", span, "just a note")
	d.Warn("a.sc", span, "just a warning")
	assert.False(t, d.HasErrors())
	assert.Equal(t, 0, d.ErrorCount())

	d.Error("a.sc", span, "undefined reference to %q", "foo")
	assert.True(t, d.HasErrors())
	assert.Equal(t, 1, d.ErrorCount())

	d.Fatal("a.sc", span, "aborting")
	assert.Equal(t, 2, d.ErrorCount())

	assert.Len(t, d.Diagnostics(), 4)
}

func TestDiagnostics_PrintIncludesEveryItem(t *testing.T) {
	d := NewDiagnostics()
	span := NewSpan(Location{Line: 2, Column: 3}, Location{Line: 2, Column: 3})
	d.Error("a.sc", span, "type mismatch")

	var buf bytes.Buffer
	d.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "a.sc:2:3")
	assert.Contains(t, out, "type mismatch")
}

func TestDiagnostics_MessageOrderMatchesEmissionOrder(t *testing.T) {
	d := NewDiagnostics()
	span := NewSpan(Location{Line: 1, Column: 1}, Location{Line: 1, Column: 1})

	d.Warn("a.sc", span, "match on %q is not exhaustive: missing variant %q", "Shape", "Circle")
	d.Error("a.sc", span, "undeclared identifier %q", "radius")

	want := []string{
		`warning: match on "Shape" is not exhaustive: missing variant "Circle"`,
		`error: undeclared identifier "radius"`,
	}
	if diff := cmp.Diff(want, diagnosticMessages(d)); diff != "" {
		t.Errorf("diagnostic messages mismatch (-want +got):\n%s", diff)
	}
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "note", SeverityNote.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "fatal", SeverityFatal.String())
	assert.Equal(t, "unknown", Severity(99).String())
}
