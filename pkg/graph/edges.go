package graph

// injectableSet is an insertion-ordered set of injectables keyed by identity
type injectableSet struct {
	index map[any]struct{}
	items []Injectable
}

func newInjectableSet() *injectableSet {
	return &injectableSet{index: make(map[any]struct{})}
}

func (s *injectableSet) add(inj Injectable) {
	if _, ok := s.index[inj]; ok {
		return
	}
	s.index[inj] = struct{}{}
	s.items = append(s.items, inj)
}

func (s *injectableSet) has(inj Injectable) bool {
	_, ok := s.index[inj]
	return ok
}

// DefinitionExport returns the single injectable d satisfies
func DefinitionExport(d Definition) Injectable {
	return d.Export()
}

// DefinitionImports returns the distinct injectables d depends on, excluding
// its own export
func DefinitionImports(d Definition) []Injectable {
	export := d.Export()
	imports := newInjectableSet()
	for _, dep := range d.Dependencies() {
		if dep.Injectable == export {
			continue
		}
		imports.add(dep.Injectable)
	}
	return imports.items
}

// ModuleExports returns the union of the exports of every member
func ModuleExports(members []Definition) []Injectable {
	exports := newInjectableSet()
	for _, d := range members {
		exports.add(d.Export())
	}
	return exports.items
}

// ModuleImports returns the union of the dependencies of every member minus
// whatever the module exports itself
func ModuleImports(members []Definition) []Injectable {
	exports := newInjectableSet()
	for _, d := range members {
		exports.add(d.Export())
	}
	imports := newInjectableSet()
	for _, d := range members {
		for _, dep := range d.Dependencies() {
			if exports.has(dep.Injectable) {
				continue
			}
			imports.add(dep.Injectable)
		}
	}
	return imports.items
}
