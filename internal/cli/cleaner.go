package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/injgraph/internal/errors"
	"github.com/toyz/injgraph/internal/harness"
)

// Cleaner removes harness directories left behind in a module, either by
// --keep or by an interrupted run
type Cleaner struct {
	moduleDir string
}

// NewCleaner creates a cleaner for the module rooted at moduleDir
func NewCleaner(moduleDir string) *Cleaner {
	return &Cleaner{moduleDir: moduleDir}
}

// Clean removes every harness directory directly under the module root and
// returns the paths it removed
func (c *Cleaner) Clean() ([]string, error) {
	entries, err := os.ReadDir(c.moduleDir)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", c.moduleDir, err)
	}

	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), harness.DirPrefix) {
			continue
		}

		dir := filepath.Join(c.moduleDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, harness.FileName)); err != nil {
			// not one of ours
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, errors.WrapFileSystemError("remove", dir, err)
		}
		removed = append(removed, dir)
	}
	return removed, nil
}
