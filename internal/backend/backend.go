// Package backend defines the code-generation handoff boundary: the
// middle end stops at a fully-checked, monomorphized AST, and a real
// backend plugs in behind this seam. Emitter is the seam a real
// backend would implement; TextEmitter is a stub that proves the seam
// works end to end without generating machine code, one emitter
// struct per output format behind a shared options-in/string-out
// shape.
package backend

import (
	"fmt"
	"strings"
)

// HeaderImporter resolves a declaration name to the external header or
// module it should be imported from when a backend lowers a
// translation unit that references foreign declarations (extern
// functions, imported types). SafeC's front end never needs a real
// implementation, but every backend-shaped component takes one so a
// future backend can plug in without changing the Emitter signature.
type HeaderImporter interface {
	ImportFor(declName string) (string, bool)
}

// NullHeaderImporter never resolves anything; the textual stub emitter
// uses it by default.
type NullHeaderImporter struct{}

func (NullHeaderImporter) ImportFor(string) (string, bool) { return "", false }

// Emitter lowers a checked translation unit (represented here only by
// its declaration name list, since the stub never inspects bodies)
// into backend-specific output text.
type Emitter interface {
	Emit(unitName string, declNames []string) (string, error)
}

// TextEmitter produces a deterministic placeholder IR listing: one
// line per top-level declaration, annotated with its import origin
// when the HeaderImporter resolves one. It stands in for a real
// LLVM-IR backend, explicitly out of scope here.
type TextEmitter struct {
	importer HeaderImporter
}

func NewTextEmitter(importer HeaderImporter) *TextEmitter {
	return &TextEmitter{importer: importer}
}

func (e *TextEmitter) Emit(unitName string, declNames []string) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; safec textual IR stub for %s\n", unitName)
	for _, name := range declNames {
		if header, ok := e.importer.ImportFor(name); ok {
			fmt.Fprintf(&sb, "declare %s ; from %s\n", name, header)
			continue
		}
		fmt.Fprintf(&sb, "define %s\n", name)
	}
	return sb.String(), nil
}
