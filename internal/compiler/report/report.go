package report

import (
	"fmt"
	"io"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "Warning"
	}
	return "Error"
}

// Diagnostic is a single message tied to a source position.
type Diagnostic struct {
	Severity Severity
	Message  string
	Line     int
	Column   int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Line, d.Column, d.Severity, d.Message)
}

// Reporter is the diagnostics sink shared by all compiler passes. It is
// append-only: passes record diagnostics and downstream stages consult
// only ErrorCount to decide whether to proceed. One Reporter per
// compilation run; it is never shared across runs.
type Reporter struct {
	diags     []Diagnostic
	numErrors int
}

func NewReporter() *Reporter {
	return &Reporter{}
}

func (r *Reporter) Error(line, col int, format string, args ...any) {
	r.diags = append(r.diags, Diagnostic{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
	r.numErrors++
}

func (r *Reporter) Warn(line, col int, format string, args ...any) {
	r.diags = append(r.diags, Diagnostic{
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// ErrorCount returns the number of errors recorded so far. Warnings are
// not counted.
func (r *Reporter) ErrorCount() int {
	return r.numErrors
}

func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// Write prints every diagnostic, one per line, in the order recorded.
func (r *Reporter) Write(w io.Writer) {
	for _, d := range r.diags {
		fmt.Fprintln(w, d)
	}
}
