package safec

import (
	"fmt"
	"sort"
)

// FileID is an interned file name, assigned in first-seen order.
type FileID int32

const unknownFileID FileID = -1

// FileSet interns file paths so every Location can carry a cheap
// integer instead of a string.
type FileSet struct {
	names []string
	ids   map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{ids: map[string]FileID{}}
}

// Intern returns the FileID for path, creating one if this is the
// first time path has been seen.
func (fs *FileSet) Intern(path string) FileID {
	if id, ok := fs.ids[path]; ok {
		return id
	}
	id := FileID(len(fs.names))
	fs.names = append(fs.names, path)
	fs.ids[path] = id
	return id
}

func (fs *FileSet) Name(id FileID) string {
	if id < 0 || int(id) >= len(fs.names) {
		return "<unknown>"
	}
	return fs.names[id]
}

// Location is a single point in a source file.
type Location struct {
	File   FileID
	Line   int32
	Column int32
	Cursor int32
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Span is a half-open range of Locations, always within a single file.
type Span struct {
	Start Location
	End   Location
}

func NewSpan(start, end Location) Span {
	return Span{Start: start, End: end}
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line && s.Start.Column == s.End.Column {
		return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d..%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d..%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// LineIndex maps byte cursors to line/column pairs for a single file's
// text, without rescanning the whole input per lookup.
type LineIndex struct {
	input     []byte
	lineStart []int
}

func NewLineIndex(input []byte) *LineIndex {
	lineStart := make([]int, 1, 64)
	lineStart[0] = 0
	for i, b := range input {
		if b == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	return &LineIndex{input: input, lineStart: lineStart}
}

func (li *LineIndex) LocationAt(file FileID, cursor int) Location {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(li.input) {
		cursor = len(li.input)
	}
	lineIdx := sort.Search(len(li.lineStart), func(i int) bool {
		return li.lineStart[i] > cursor
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}
	lineStart := li.lineStart[lineIdx]
	col := 1
	for _, r := range string(li.input[lineStart:cursor]) {
		_ = r
		col++
	}
	return Location{File: file, Line: int32(lineIdx + 1), Column: int32(col), Cursor: int32(cursor)}
}
