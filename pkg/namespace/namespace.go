// Package namespace holds the packages an extraction run may import and walks
// their public symbols.
package namespace

import (
	"iter"
	"slices"
	"sort"
	"strings"

	"github.com/toyz/injgraph/internal/errors"
	"github.com/toyz/injgraph/pkg/graph"
)

// Symbols maps the public names of a package to their values
type Symbols map[string]any

// Names returns the symbol names in sorted order
func (s Symbols) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loader imports a package and returns its symbol table. Loading may run
// arbitrary initialization code and may fail.
type Loader func() (Symbols, error)

// Package describes one installed package
type Package struct {
	// Path is the fully qualified import path
	Path string
	// IsPackage is false for units that cannot be imported as libraries,
	// such as commands
	IsPackage bool
	Load      Loader
}

// Registry is the set of installed packages
type Registry struct {
	packages map[string]Package
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{packages: make(map[string]Package)}
}

// Register adds pkg, replacing any earlier package with the same path
func (r *Registry) Register(pkg Package) {
	r.packages[pkg.Path] = pkg
}

// Packages returns every registered package sorted by path
func (r *Registry) Packages() []Package {
	pkgs := make([]Package, 0, len(r.packages))
	for _, pkg := range r.packages {
		pkgs = append(pkgs, pkg)
	}
	slices.SortFunc(pkgs, func(a, b Package) int {
		return strings.Compare(a.Path, b.Path)
	})
	return pkgs
}

var defaultRegistry = NewRegistry()

// Register adds pkg to the default registry. It is meant to be called from
// init functions.
func Register(pkg Package) {
	defaultRegistry.Register(pkg)
}

// Default returns the default registry
func Default() *Registry {
	return defaultRegistry
}

// IsPrivate reports whether name is hidden from the walk
func IsPrivate(name string) bool {
	return strings.HasPrefix(name, "_")
}

// EligiblePath reports whether an import path may be scanned: none of its
// segments is private and it contains root
func EligiblePath(path, root string) bool {
	for _, segment := range strings.Split(path, "/") {
		if IsPrivate(segment) {
			return false
		}
	}
	return strings.Contains(path, root)
}

// Eligible reports whether pkg may be scanned under root
func Eligible(pkg Package, root string) bool {
	return pkg.IsPackage && EligiblePath(pkg.Path, root)
}

// Walker enumerates the public symbols of every eligible package
type Walker struct {
	registry *Registry
	root     string
}

// NewWalker creates a walker over registry restricted to paths containing root
func NewWalker(registry *Registry, root string) *Walker {
	return &Walker{registry: registry, root: root}
}

// Packages returns the eligible packages in walk order
func (w *Walker) Packages() []Package {
	var eligible []Package
	for _, pkg := range w.registry.Packages() {
		if Eligible(pkg, w.root) {
			eligible = append(eligible, pkg)
		}
	}
	return eligible
}

// Symbols lazily imports each eligible package and yields its public
// symbols. A failed import is yielded once as an error and ends the sequence.
func (w *Walker) Symbols() iter.Seq2[graph.Symbol, error] {
	return func(yield func(graph.Symbol, error) bool) {
		for _, pkg := range w.Packages() {
			symbols, err := load(pkg)
			if err != nil {
				yield(graph.Symbol{Package: pkg.Path}, errors.NewImportError(pkg.Path, err))
				return
			}
			for _, name := range symbols.Names() {
				if IsPrivate(name) {
					continue
				}
				sym := graph.Symbol{Value: symbols[name], Name: name, Package: pkg.Path}
				if !yield(sym, nil) {
					return
				}
			}
		}
	}
}

func load(pkg Package) (Symbols, error) {
	if pkg.Load == nil {
		return Symbols{}, nil
	}
	return pkg.Load()
}
