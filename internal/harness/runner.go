package harness

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/toyz/injgraph/internal/errors"
)

// DirPrefix starts the name of every harness directory. The leading
// underscore keeps it out of ./... patterns and out of the namespace walk.
const DirPrefix = "_injgraph_"

// Runner writes a harness program into a module and runs it
type Runner struct {
	// ModuleDir is the module root the harness is written into
	ModuleDir string
	// GoCommand is the go binary to invoke
	GoCommand string
	// Keep leaves the harness directory in place after the run
	Keep bool
	// Stderr receives the harness's standard error as it runs, if set
	Stderr io.Writer
}

// NewRunner creates a runner for the module rooted at moduleDir
func NewRunner(moduleDir string) *Runner {
	return &Runner{
		ModuleDir: moduleDir,
		GoCommand: "go",
	}
}

// NewDirName returns a fresh harness directory name
func NewDirName() string {
	return DirPrefix + uuid.NewString()[:8]
}

// Write stores src as the harness program in a new directory of the module
// and returns that directory's name relative to the module root
func (r *Runner) Write(name string, src []byte) (string, error) {
	dir := filepath.Join(r.ModuleDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapFileSystemError("create", dir, err)
	}
	file := filepath.Join(dir, FileName)
	if err := os.WriteFile(file, src, 0o644); err != nil {
		return "", errors.WrapFileSystemError("write", file, err)
	}
	return name, nil
}

// Run writes the harness under name, executes it with go run and streams its
// standard output to stdout. A non-zero exit of the harness is returned as a
// HarnessError.
func (r *Runner) Run(ctx context.Context, name string, src []byte, stdout io.Writer) error {
	dir, err := r.Write(name, src)
	if err != nil {
		return err
	}
	if !r.Keep {
		defer os.RemoveAll(filepath.Join(r.ModuleDir, dir))
	}

	var stderr bytes.Buffer
	errOut := io.Writer(&stderr)
	if r.Stderr != nil {
		errOut = io.MultiWriter(&stderr, r.Stderr)
	}

	cmd := exec.CommandContext(ctx, r.GoCommand, "run", "./"+filepath.ToSlash(dir))
	cmd.Dir = r.ModuleDir
	cmd.Stdout = stdout
	cmd.Stderr = errOut

	if err := cmd.Run(); err != nil {
		return errors.NewHarnessError(dir, stderr.String(), err)
	}
	return nil
}
