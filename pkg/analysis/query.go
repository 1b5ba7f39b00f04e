package analysis

import "strings"

// Providers lists everything that exports a given injectable
type Providers struct {
	Definitions []*Definition `json:"definitions"`
	Modules     []*Module     `json:"modules"`
}

// Len returns the number of providers found
func (p Providers) Len() int {
	return len(p.Definitions) + len(p.Modules)
}

// FindInjectables returns the injectables whose name, package or type
// contains query, case-insensitively. An empty query matches everything.
func (a *Analysis) FindInjectables(query string) []*Injectable {
	query = strings.ToLower(query)
	var found []*Injectable
	for _, inj := range a.Injectables {
		if query == "" ||
			strings.Contains(strings.ToLower(inj.Name), query) ||
			strings.Contains(strings.ToLower(inj.Package), query) ||
			strings.Contains(strings.ToLower(inj.Type), query) {
			found = append(found, inj)
		}
	}
	return found
}

// Lookup returns the injectable discovered as name in pkg
func (a *Analysis) Lookup(name, pkg string) (*Injectable, bool) {
	for _, inj := range a.Injectables {
		if inj.Name == name && inj.Package == pkg {
			return inj, true
		}
	}
	return nil, false
}

// ProvidersOf returns the definitions exporting inj and the modules whose
// exports include it
func (a *Analysis) ProvidersOf(inj *Injectable) Providers {
	var p Providers
	for _, def := range a.Definitions {
		if def.Export != nil && def.Export.Equal(inj) {
			p.Definitions = append(p.Definitions, def)
		}
	}
	for _, mod := range a.Modules {
		for _, exp := range mod.Exports {
			if exp.Equal(inj) {
				p.Modules = append(p.Modules, mod)
				break
			}
		}
	}
	return p
}

// ConsumersOf returns the definitions and modules that import inj
func (a *Analysis) ConsumersOf(inj *Injectable) Providers {
	var p Providers
	for _, def := range a.Definitions {
		if containsInjectable(def.Imports, inj) {
			p.Definitions = append(p.Definitions, def)
		}
	}
	for _, mod := range a.Modules {
		if containsInjectable(mod.Imports, inj) {
			p.Modules = append(p.Modules, mod)
		}
	}
	return p
}

func containsInjectable(list []*Injectable, inj *Injectable) bool {
	for _, item := range list {
		if item.Equal(inj) {
			return true
		}
	}
	return false
}
