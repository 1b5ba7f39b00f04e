package graph

import (
	"bufio"
	"io"
	"strings"

	"github.com/toyz/injgraph/internal/errors"
)

// Separator divides the fields of a record line. Field values are written
// verbatim, so a value containing it corrupts the line.
const Separator = "\t"

// Record is one emitted node with its edges expressed as keys
type Record struct {
	Kind    Kind
	Key     Key
	Name    string
	Package string
	// Type is only set for injectables
	Type    string
	Exports []Key
	Imports []Key
}

// Fields returns the record laid out positionally
func (r Record) Fields() []string {
	fields := []string{r.Kind.String(), r.Key.String(), r.Name, r.Package}
	switch r.Kind {
	case KindInjectable:
		fields = append(fields, r.Type)
	case KindDefinition, KindModule:
		fields = append(fields, "export")
		fields = appendKeys(fields, r.Exports)
		fields = append(fields, "import")
		fields = appendKeys(fields, r.Imports)
	}
	return fields
}

// String returns the record line without its terminating newline
func (r Record) String() string {
	return strings.Join(r.Fields(), Separator)
}

func appendKeys(fields []string, keys []Key) []string {
	for _, k := range keys {
		fields = append(fields, k.String())
	}
	return fields
}

// Sink receives records in discovery order
type Sink interface {
	Emit(rec Record) error
}

// Emitter writes records as lines to a single stream
type Emitter struct {
	w     *bufio.Writer
	count int
}

// NewEmitter creates an emitter writing to w
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: bufio.NewWriter(w)}
}

// Emit writes one line for rec
func (e *Emitter) Emit(rec Record) error {
	if _, err := e.w.WriteString(rec.String()); err != nil {
		return errors.WrapOutputError("write", err)
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return errors.WrapOutputError("write", err)
	}
	e.count++
	return nil
}

// Flush writes any buffered lines to the underlying stream
func (e *Emitter) Flush() error {
	if err := e.w.Flush(); err != nil {
		return errors.WrapOutputError("flush", err)
	}
	return nil
}

// Count returns the number of records emitted so far
func (e *Emitter) Count() int {
	return e.count
}
