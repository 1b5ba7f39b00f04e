// Package analysis reads the record stream produced by an extraction run back
// into a graph that can be searched.
package analysis

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Entity is the label under which a node was first discovered
type Entity struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Package string `json:"package"`
}

// ImportSnippet returns the Go import line and the selector expression that
// refer to the entity from another package. Records carry the import path
// but not the package name, so the qualifier is the name the go tool assumes
// for the path: the last element without a major-version suffix, a "go-"
// prefix or anything after the first non-identifier character. A package
// whose name differs from that guess needs a named import.
func (e Entity) ImportSnippet() (importLine, selector string) {
	return fmt.Sprintf("import %q", e.Package), assumedName(e.Package) + "." + e.Name
}

func assumedName(importPath string) string {
	base := path.Base(importPath)
	if strings.HasPrefix(base, "v") {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			if dir := path.Dir(importPath); dir != "." {
				base = path.Base(dir)
			}
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexFunc(base, notIdentifier); i >= 0 {
		base = base[:i]
	}
	return base
}

func notIdentifier(ch rune) bool {
	return !('a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' ||
		'0' <= ch && ch <= '9' ||
		ch == '_' ||
		ch >= utf8.RuneSelf && (unicode.IsLetter(ch) || unicode.IsDigit(ch)))
}

// Injectable is a dependency slot
type Injectable struct {
	Entity
	Type string `json:"type"`
}

// Equal reports whether two injectables denote the same slot, either by
// being the same node or by carrying the same label and type
func (i *Injectable) Equal(other *Injectable) bool {
	if i == other {
		return true
	}
	if i == nil || other == nil {
		return false
	}
	return i.Name == other.Name && i.Package == other.Package && i.Type == other.Type
}

// Definition is a provider with one export
type Definition struct {
	Entity
	Export  *Injectable   `json:"export"`
	Imports []*Injectable `json:"imports"`
}

// Module is a group of providers
type Module struct {
	Entity
	Exports []*Injectable `json:"exports"`
	Imports []*Injectable `json:"imports"`
}

// Analysis is the resolved graph of one extraction run
type Analysis struct {
	Injectables []*Injectable `json:"injectables"`
	Definitions []*Definition `json:"definitions"`
	Modules     []*Module     `json:"modules"`
}

// Empty returns an analysis with no nodes
func Empty() *Analysis {
	return &Analysis{
		Injectables: []*Injectable{},
		Definitions: []*Definition{},
		Modules:     []*Module{},
	}
}
