package harness

import (
	"context"
	"fmt"
	"go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/injgraph/internal/errors"
	"github.com/toyz/injgraph/pkg/namespace"
)

// Target is a package the harness imports
type Target struct {
	Path  string
	Name  string
	Alias string
	// Symbols are the exported package-level variables, sorted
	Symbols []string
}

// Skipped records a package that discovery did not turn into a target
type Skipped struct {
	Path   string
	Reason string
}

// Discovery is the result of enumerating a module's packages
type Discovery struct {
	Targets []Target
	Skipped []Skipped
}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedTypes

// Discover enumerates the packages matching patterns in dir and keeps the
// importable ones whose path contains root. harnessPath is the import path
// the generated program will have. A package that fails to load aborts
// discovery.
func Discover(ctx context.Context, dir, root, harnessPath string, patterns ...string) (*Discovery, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.WrapWithOperation("load", strings.Join(patterns, " "), err)
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	d := &Discovery{}
	for _, pkg := range pkgs {
		switch {
		case pkg.Name == "main":
			d.Skipped = append(d.Skipped, Skipped{Path: pkg.PkgPath, Reason: "command package"})
			continue
		case !namespace.EligiblePath(pkg.PkgPath, root):
			d.Skipped = append(d.Skipped, Skipped{Path: pkg.PkgPath, Reason: "outside namespace"})
			continue
		case !CanImport(harnessPath, pkg.PkgPath):
			d.Skipped = append(d.Skipped, Skipped{Path: pkg.PkgPath, Reason: "internal to a subtree"})
			continue
		}

		if len(pkg.Errors) > 0 {
			return nil, errors.NewImportError(pkg.PkgPath, packageErrors(pkg.Errors))
		}

		d.Targets = append(d.Targets, Target{
			Path:    pkg.PkgPath,
			Name:    pkg.Name,
			Alias:   fmt.Sprintf("p%d", len(d.Targets)),
			Symbols: exportedVars(pkg.Types),
		})
	}
	return d, nil
}

// exportedVars lists the exported package-level variables of pkg
func exportedVars(pkg *types.Package) []string {
	if pkg == nil {
		return nil
	}
	scope := pkg.Scope()
	var names []string
	for _, name := range scope.Names() {
		obj, ok := scope.Lookup(name).(*types.Var)
		if !ok || !obj.Exported() {
			continue
		}
		names = append(names, name)
	}
	return names
}

func packageErrors(errs []packages.Error) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
