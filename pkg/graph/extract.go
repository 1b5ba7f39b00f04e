package graph

import (
	"io"
	"iter"
)

// Symbol is a named value discovered in a package
type Symbol struct {
	Value   any
	Name    string
	Package string
}

// State is the mutable context of one extraction run. It is owned by a single
// goroutine and discarded when the run ends.
type State struct {
	Registry *Registry
	Stats    Stats
}

// Stats counts what a run has seen and emitted
type Stats struct {
	Symbols     int
	Injectables int
	Definitions int
	Modules     int
}

// NewState creates the context for a fresh run
func NewState() *State {
	return &State{Registry: NewRegistry()}
}

// Visit classifies sym and, the first time its value is seen, sends its
// record to sink. Later sightings under other names are ignored.
func Visit(st *State, sym Symbol, sink Sink) error {
	st.Stats.Symbols++

	switch Classify(sym.Value) {
	case KindInjectable:
		inj := sym.Value.(Injectable)
		key := st.Registry.Key(inj)
		if st.Registry.Seen(key) {
			return nil
		}
		st.Registry.Mark(key)
		st.Stats.Injectables++
		return sink.Emit(Record{
			Kind:    KindInjectable,
			Key:     key,
			Name:    sym.Name,
			Package: sym.Package,
			Type:    inj.ContextType(),
		})

	case KindDefinition:
		def, _ := asDefinition(sym.Value)
		key := st.Registry.Key(def)
		if st.Registry.Seen(key) {
			return nil
		}
		st.Registry.Mark(key)
		st.Stats.Definitions++
		return sink.Emit(Record{
			Kind:    KindDefinition,
			Key:     key,
			Name:    sym.Name,
			Package: sym.Package,
			Exports: []Key{st.Registry.Key(DefinitionExport(def))},
			Imports: keysOf(st.Registry, DefinitionImports(def)),
		})

	case KindModule:
		members, _ := asModule(sym.Value)
		key := st.Registry.Key(sym.Value)
		if st.Registry.Seen(key) {
			return nil
		}
		st.Registry.Mark(key)
		st.Stats.Modules++
		return sink.Emit(Record{
			Kind:    KindModule,
			Key:     key,
			Name:    sym.Name,
			Package: sym.Package,
			Exports: keysOf(st.Registry, ModuleExports(members)),
			Imports: keysOf(st.Registry, ModuleImports(members)),
		})
	}
	return nil
}

func keysOf(r *Registry, injs []Injectable) []Key {
	keys := make([]Key, 0, len(injs))
	for _, inj := range injs {
		keys = append(keys, r.Key(inj))
	}
	return keys
}

// Extractor drives symbols through classification and emission for a whole
// namespace
type Extractor struct {
	state *State
	sink  Sink
}

// NewExtractor creates an extractor sending records to sink
func NewExtractor(sink Sink) *Extractor {
	return &Extractor{
		state: NewState(),
		sink:  sink,
	}
}

// Run consumes symbols in order. The first error, whether from the symbol
// source or the sink, stops the run and is returned.
func (x *Extractor) Run(symbols iter.Seq2[Symbol, error]) error {
	for sym, err := range symbols {
		if err != nil {
			return err
		}
		if err := Visit(x.state, sym, x.sink); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the counters of the run so far
func (x *Extractor) Stats() Stats {
	return x.state.Stats
}

// Extract runs a complete extraction writing lines to w
func Extract(w io.Writer, symbols iter.Seq2[Symbol, error]) error {
	em := NewEmitter(w)
	runErr := NewExtractor(em).Run(symbols)
	if err := em.Flush(); err != nil && runErr == nil {
		return err
	}
	return runErr
}
