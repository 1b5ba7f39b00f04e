// Package graph extracts the dependency graph of DI objects reachable from a
// set of packages and writes it as tab-separated records.
package graph

import "reflect"

// Kind is the closed set of node kinds a discovered value can classify as
type Kind int

const (
	KindNone Kind = iota
	KindInjectable
	KindDefinition
	KindModule
)

// String returns the record tag used for the kind
func (k Kind) String() string {
	switch k {
	case KindInjectable:
		return "injectable"
	case KindDefinition:
		return "definition"
	case KindModule:
		return "module"
	default:
		return "none"
	}
}

// Injectable is the shape of a single dependency slot
type Injectable interface {
	// ContextType describes the type of value the slot carries
	ContextType() string
}

// Dependency is a named reference from a provider to an injectable it needs
type Dependency struct {
	Name       string
	Injectable Injectable
}

// Definition is the shape of a provider: exactly one export and zero or more
// named dependencies
type Definition interface {
	Export() Injectable
	Dependencies() []Dependency
}

// Collection is the shape of anything that can be iterated as a module
type Collection interface {
	Members() []any
}

// Classify decides which node kind v is, based purely on the methods it
// exposes. Values without reference identity never classify.
func Classify(v any) Kind {
	if !identifiable(v) {
		return KindNone
	}
	if _, ok := asDefinition(v); ok {
		return KindDefinition
	}
	if _, ok := asModule(v); ok {
		return KindModule
	}
	if _, ok := v.(Injectable); ok {
		return KindInjectable
	}
	return KindNone
}

// asDefinition returns v as a well-formed Definition. A definition whose
// export or any dependency lacks identity is malformed and does not match.
func asDefinition(v any) (Definition, bool) {
	d, ok := v.(Definition)
	if !ok || !identifiable(d) {
		return nil, false
	}
	if !identifiable(d.Export()) {
		return nil, false
	}
	for _, dep := range d.Dependencies() {
		if !identifiable(dep.Injectable) {
			return nil, false
		}
	}
	return d, true
}

// asModule returns the members of v when every one of them is a definition
func asModule(v any) ([]Definition, bool) {
	c, ok := v.(Collection)
	if !ok {
		return nil, false
	}
	members := c.Members()
	defs := make([]Definition, 0, len(members))
	for _, m := range members {
		d, ok := asDefinition(m)
		if !ok {
			return nil, false
		}
		defs = append(defs, d)
	}
	return defs, true
}

// identifiable reports whether v is a non-nil pointer, the only kind of value
// whose identity survives being stored in an interface. Pointers to
// zero-size values are excluded: distinct zero-size variables may share an
// address, so their pointers cannot tell objects apart.
func identifiable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}
	return rv.Type().Elem().Size() > 0
}
