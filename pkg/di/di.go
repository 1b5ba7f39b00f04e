// Package di is the object model packages use to declare their injectables,
// providers and modules. Values are plain descriptions; nothing here resolves
// them.
//
//	var (
//		Config = di.NewInjectable[*config.Config]("config")
//		Store  = di.NewInjectable[*store.Store]("store")
//
//		ProvideStore = di.Provide(Store, store.New, di.Dep("cfg", Config))
//		Module       = di.NewModule(ProvideStore)
//	)
package di

import (
	"reflect"

	"github.com/toyz/injgraph/pkg/graph"
)

// Injectable is a dependency slot for values of type T
type Injectable[T any] struct {
	name string
	typ  reflect.Type
}

// NewInjectable creates a new slot. Every call returns a distinct slot, even
// for the same name and type.
func NewInjectable[T any](name string) *Injectable[T] {
	return &Injectable[T]{name: name, typ: reflect.TypeFor[T]()}
}

// Name returns the name the slot was declared with
func (i *Injectable[T]) Name() string {
	return i.name
}

// ContextType returns the qualified name of T. Pointers keep the qualified
// name of what they point to, so *Config reads "*example.com/app.Config".
func (i *Injectable[T]) ContextType() string {
	return qualifiedName(i.typ)
}

func qualifiedName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + qualifiedName(t.Elem())
	}
	if t.PkgPath() != "" && t.Name() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// Dep names a dependency of a provider
func Dep(name string, injectable graph.Injectable) graph.Dependency {
	return graph.Dependency{Name: name, Injectable: injectable}
}

// Provider declares that a factory satisfies one injectable given others
type Provider struct {
	export  graph.Injectable
	factory any
	deps    []graph.Dependency
}

// Provide creates a provider for export
func Provide(export graph.Injectable, factory any, deps ...graph.Dependency) *Provider {
	return &Provider{export: export, factory: factory, deps: deps}
}

// Export returns the injectable the provider satisfies
func (p *Provider) Export() graph.Injectable {
	return p.export
}

// Dependencies returns the named injectables the provider needs
func (p *Provider) Dependencies() []graph.Dependency {
	return p.deps
}

// Factory returns the function that builds the exported value
func (p *Provider) Factory() any {
	return p.factory
}

// Module groups providers into one composable unit
type Module struct {
	providers []*Provider
}

// NewModule creates a module from providers
func NewModule(providers ...*Provider) *Module {
	return &Module{providers: providers}
}

// Providers returns the providers of the module in declaration order
func (m *Module) Providers() []*Provider {
	return m.providers
}

// Members returns the providers as untyped values
func (m *Module) Members() []any {
	members := make([]any, len(m.providers))
	for i, p := range m.providers {
		members[i] = p
	}
	return members
}
