package writer

import (
	"fmt"
	"strings"
)

// Writer builds Python source text line by line
type Writer struct {
	sb strings.Builder
}

// NewWriter creates an empty writer
func NewWriter() *Writer {
	return &Writer{}
}

// Write writes a string without adding a newline
func (w *Writer) Write(s string) {
	w.sb.WriteString(s)
}

// WriteLine writes a string and adds a newline
func (w *Writer) WriteLine(s string) {
	w.Write(s)
	w.Newline()
}

// WriteLinef writes a formatted string and adds a newline
func (w *Writer) WriteLinef(format string, args ...any) {
	w.Write(fmt.Sprintf(format, args...))
	w.Newline()
}

// Newline adds a newline character
func (w *Writer) Newline() {
	w.sb.WriteString("\n")
}

// WriteDocstring writes a single-line triple-quoted docstring
func (w *Writer) WriteDocstring(doc string) {
	w.WriteLinef(`"""%s"""`, strings.TrimSpace(doc))
}

// WriteStarImport writes a relative wildcard import of a sibling module
func (w *Writer) WriteStarImport(module string) {
	w.WriteLinef("from .%s import *", module)
}

// Bytes returns the generated code
func (w *Writer) Bytes() []byte {
	return []byte(w.sb.String())
}
