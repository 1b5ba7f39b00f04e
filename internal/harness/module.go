package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/toyz/injgraph/internal/errors"
)

// Module describes the Go module being analyzed
type Module struct {
	// Path is the module path declared in go.mod
	Path string
	// Dir is the directory holding go.mod
	Dir string
}

// FindModule searches for go.mod starting from startDir and walking up
func FindModule(startDir string) (*Module, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, errors.WrapWithOperation("resolve", startDir, err)
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			path, err := ParseModulePath(goModPath)
			if err != nil {
				return nil, err
			}
			return &Module{Path: path, Dir: currentDir}, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return nil, errors.ConfigurationError("go.mod", fmt.Sprintf("no go.mod found in %s or its parents", startDir))
}

// ParseModulePath extracts the module path from a go.mod file
func ParseModulePath(goModPath string) (string, error) {
	content, err := os.ReadFile(goModPath)
	if err != nil {
		return "", errors.WrapFileSystemError("read", goModPath, err)
	}

	modFile, err := modfile.Parse(goModPath, content, nil)
	if err != nil {
		return "", errors.WrapConfigurationError("go.mod", "parse", err)
	}

	if modFile.Module == nil {
		return "", errors.ConfigurationError("go.mod", "no module declaration found")
	}

	return modFile.Module.Mod.Path, nil
}

// CanImport reports whether a program located at importer may import pkg
// under the internal-package rule: every internal element of pkg must be
// rooted at an ancestor of importer.
func CanImport(importer, pkg string) bool {
	segments := strings.Split(pkg, "/")
	for i, segment := range segments {
		if segment != "internal" {
			continue
		}
		parent := strings.Join(segments[:i], "/")
		if parent != "" && importer != parent && !strings.HasPrefix(importer, parent+"/") {
			return false
		}
	}
	return true
}
