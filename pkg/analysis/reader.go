package analysis

import (
	"bufio"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/injgraph/internal/errors"
)

// record is one line of the stream
type record struct {
	Injectable *injectableRecord `parser:"  @@"`
	Definition *definitionRecord `parser:"| @@"`
	Module     *moduleRecord     `parser:"| @@"`
}

type injectableRecord struct {
	Key     string `parser:"'injectable' Tab @Field"`
	Name    string `parser:"Tab @Field"`
	Package string `parser:"Tab @Field"`
	Type    string `parser:"(Tab @Field?)?"`
}

type definitionRecord struct {
	Key     string   `parser:"'definition' Tab @Field"`
	Name    string   `parser:"Tab @Field"`
	Package string   `parser:"Tab @Field"`
	Export  string   `parser:"Tab 'export' Tab @Field"`
	Imports []string `parser:"Tab 'import' (Tab @Field)*"`
}

type moduleRecord struct {
	Key     string   `parser:"'module' Tab @Field"`
	Name    string   `parser:"Tab @Field"`
	Package string   `parser:"Tab @Field"`
	Exports []string `parser:"Tab 'export' (Tab @!'import')*"`
	Imports []string `parser:"Tab 'import' (Tab @Field)*"`
}

var recordParser = participle.MustBuild[record](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Tab", Pattern: `\t`},
		{Name: "Field", Pattern: `[^\t]+`},
	})),
	participle.UseLookahead(4),
)

// knownKinds are the record tags the reader understands. Lines with any
// other tag are skipped.
var knownKinds = map[string]bool{
	"injectable": true,
	"definition": true,
	"module":     true,
}

// Reader accumulates lines and resolves them into an Analysis. Records may
// reference keys that appear later in the stream, so resolution happens once
// all lines are in.
type Reader struct {
	stream      string
	line        int
	injectables map[string]*Injectable
	order       []*Injectable
	definitions []*definitionRecord
	modules     []*moduleRecord
}

// NewReader creates a reader; stream names the source in errors
func NewReader(stream string) *Reader {
	return &Reader{
		stream:      stream,
		injectables: make(map[string]*Injectable),
	}
}

// AddLine parses one line of the stream
func (r *Reader) AddLine(text string) error {
	r.line++
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	kind, _, _ := strings.Cut(text, "\t")
	if !knownKinds[kind] {
		return nil
	}

	rec, err := recordParser.ParseString(r.stream, text)
	if err != nil {
		return errors.NewParseError(r.stream, r.line, text, err)
	}

	switch {
	case rec.Injectable != nil:
		ir := rec.Injectable
		if _, ok := r.injectables[ir.Key]; ok {
			return nil
		}
		inj := &Injectable{
			Entity: Entity{Key: ir.Key, Name: ir.Name, Package: ir.Package},
			Type:   ir.Type,
		}
		r.injectables[ir.Key] = inj
		r.order = append(r.order, inj)
	case rec.Definition != nil:
		r.definitions = append(r.definitions, rec.Definition)
	case rec.Module != nil:
		r.modules = append(r.modules, rec.Module)
	}
	return nil
}

// Analysis resolves the lines read so far. Keys that name no injectable
// record are dropped from edge lists.
func (r *Reader) Analysis() *Analysis {
	a := Empty()
	a.Injectables = append(a.Injectables, r.order...)

	for _, dr := range r.definitions {
		a.Definitions = append(a.Definitions, &Definition{
			Entity:  Entity{Key: dr.Key, Name: dr.Name, Package: dr.Package},
			Export:  r.injectables[dr.Export],
			Imports: r.resolve(dr.Imports),
		})
	}
	for _, mr := range r.modules {
		a.Modules = append(a.Modules, &Module{
			Entity:  Entity{Key: mr.Key, Name: mr.Name, Package: mr.Package},
			Exports: r.resolve(mr.Exports),
			Imports: r.resolve(mr.Imports),
		})
	}
	return a
}

func (r *Reader) resolve(keys []string) []*Injectable {
	resolved := make([]*Injectable, 0, len(keys))
	for _, key := range keys {
		if inj, ok := r.injectables[key]; ok {
			resolved = append(resolved, inj)
		}
	}
	return resolved
}

// Read parses a complete stream
func Read(stream string, in io.Reader) (*Analysis, error) {
	reader := NewReader(stream)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if err := reader.AddLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapFileSystemError("read", stream, err)
	}
	return reader.Analysis(), nil
}
