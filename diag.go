package safec

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Severity is the level a Diagnostic was reported at. All four levels
// share identical formatting; only Error and Fatal increment the error
// count.
type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

var severityColor = map[Severity]*color.Color{
	SeverityNote:    color.New(color.FgCyan),
	SeverityWarning: color.New(color.FgYellow, color.Bold),
	SeverityError:   color.New(color.FgRed, color.Bold),
	SeverityFatal:   color.New(color.FgHiRed, color.Bold),
}

// Diagnostic is a single source-located note, warning, error or fatal
// message.
type Diagnostic struct {
	Severity Severity
	Message  string
	Span     Span
	File     string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%s: %s: %s", d.File, d.Span, d.Severity, d.Message)
}

// Diagnostics is the compiler's single diagnostic sink. Every stage
// shares one instance; errors are recoverable: a stage keeps running
// after emitting one, and returns "success" only when ErrorCount() is
// still zero at the end of its own pass.
type Diagnostics struct {
	items      []Diagnostic
	fileNames  map[string]string
	errorCount int
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

func (d *Diagnostics) emit(sev Severity, file string, span Span, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.items = append(d.items, Diagnostic{Severity: sev, Message: msg, Span: span, File: file})
	if sev == SeverityError || sev == SeverityFatal {
		d.errorCount++
	}
}

func (d *Diagnostics) Note(file string, span Span, format string, args ...any) {
	d.emit(SeverityNote, file, span, format, args...)
}

func (d *Diagnostics) Warn(file string, span Span, format string, args ...any) {
	d.emit(SeverityWarning, file, span, format, args...)
}

func (d *Diagnostics) Error(file string, span Span, format string, args ...any) {
	d.emit(SeverityError, file, span, format, args...)
}

func (d *Diagnostics) Fatal(file string, span Span, format string, args ...any) {
	d.emit(SeverityFatal, file, span, format, args...)
}

func (d *Diagnostics) HasErrors() bool { return d.errorCount > 0 }
func (d *Diagnostics) ErrorCount() int { return d.errorCount }
func (d *Diagnostics) Diagnostics() []Diagnostic {
	return d.items
}

// Print writes every diagnostic, in emission order, to w. Colors are
// applied per severity when color.NoColor is false (fatih/color
// already disables itself on non-terminal output).
func (d *Diagnostics) Print(w io.Writer) {
	for _, item := range d.items {
		c, ok := severityColor[item.Severity]
		level := item.Severity.String()
		if ok {
			level = c.Sprint(level)
		}
		fmt.Fprintf(w, "%s:%s: %s: %s\n", item.File, item.Span, level, item.Message)
	}
}
