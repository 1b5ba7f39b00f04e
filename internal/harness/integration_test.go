package harness

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/injgraph/internal/errors"
	"github.com/toyz/injgraph/pkg/analysis"
)

const fixtureModule = "example.com/fixture"

const goodPackage = `package good

import "github.com/toyz/injgraph/pkg/di"

type Config struct{ Name string }

type Store struct{ cfg *Config }

func NewStore(cfg *Config) *Store { return &Store{cfg: cfg} }

var (
	ConfigSlot   = di.NewInjectable[*Config]("config")
	StoreSlot    = di.NewInjectable[*Store]("store")
	ProvideStore = di.Provide(StoreSlot, NewStore, di.Dep("cfg", ConfigSlot))
	Module       = di.NewModule(ProvideStore)
	Version      = "1.0.0"
)
`

const sharedPackage = `package shared

import (
	"time"

	"github.com/toyz/injgraph/pkg/di"
)

var Clock = di.NewInjectable[*time.Location]("clock")
`

const commandPackage = `package main

func main() {}
`

// requireGo skips tests that need the go toolchain and module downloads
func requireGo(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping go toolchain test in short mode")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not found in PATH")
	}
	return goBin
}

// writeFixtureModule creates a module depending on this repository and
// resolves its requirements
func writeFixtureModule(t *testing.T, files map[string]string) string {
	t.Helper()
	goBin := requireGo(t)
	t.Setenv("GOWORK", "off")

	repo, err := FindModule(".")
	require.NoError(t, err)

	dir := t.TempDir()
	goMod := "module " + fixtureModule + "\n\ngo 1.25\n\n" +
		"require github.com/toyz/injgraph v0.0.0\n\n" +
		"replace github.com/toyz/injgraph => " + repo.Dir + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(goMod), 0o644))

	for name, content := range files {
		file := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
		require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	}

	tidy := exec.Command(goBin, "mod", "tidy")
	tidy.Dir = dir
	if out, err := tidy.CombinedOutput(); err != nil {
		t.Skipf("cannot resolve fixture module requirements: %v\n%s", err, out)
	}
	return dir
}

func harnessDirs(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), DirPrefix) {
			names = append(names, entry.Name())
		}
	}
	return names
}

func TestDiscover_Module(t *testing.T) {
	dir := writeFixtureModule(t, map[string]string{
		"good/good.go":              goodPackage,
		"internal/shared/shared.go": sharedPackage,
		"cmd/tool/main.go":          commandPackage,
		"_private/private.go":       "package private\n\nvar Hidden = 1\n",
		"a/internal/b/b.go":         "package b\n\nvar Nested = 1\n",
	})

	harnessPath := path.Join(fixtureModule, DirPrefix+"test")
	d, err := Discover(context.Background(), dir, fixtureModule, harnessPath, "./...", "./_private")
	require.NoError(t, err)

	var targets []string
	for _, target := range d.Targets {
		targets = append(targets, target.Path)
	}
	assert.Equal(t, []string{
		fixtureModule + "/good",
		fixtureModule + "/internal/shared",
	}, targets)
	assert.Equal(t, []string{"ConfigSlot", "Module", "ProvideStore", "StoreSlot", "Version"}, d.Targets[0].Symbols)
	assert.Equal(t, []string{"Clock"}, d.Targets[1].Symbols)

	skipped := make(map[string]string)
	for _, s := range d.Skipped {
		skipped[s.Path] = s.Reason
	}
	assert.Equal(t, map[string]string{
		fixtureModule + "/_private":     "outside namespace",
		fixtureModule + "/a/internal/b": "internal to a subtree",
		fixtureModule + "/cmd/tool":     "command package",
	}, skipped)
}

func TestDiscover_TypeErrorFailsFast(t *testing.T) {
	dir := writeFixtureModule(t, map[string]string{
		"good/good.go":     goodPackage,
		"broken/broken.go": "package broken\n\nvar Count int = \"three\"\n",
	})

	_, err := Discover(context.Background(), dir, fixtureModule, path.Join(fixtureModule, DirPrefix+"test"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ImportErrorCode))

	var importErr *errors.ImportError
	require.True(t, stderrors.As(err, &importErr))
	assert.Equal(t, fixtureModule+"/broken", importErr.Package)
}

func TestGenerator_Extract(t *testing.T) {
	dir := writeFixtureModule(t, map[string]string{
		"good/good.go":              goodPackage,
		"internal/shared/shared.go": sharedPackage,
		"cmd/tool/main.go":          commandPackage,
	})

	gen, err := NewGenerator(Options{Dir: dir}, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	res, err := gen.Extract(context.Background(), &out)
	require.NoError(t, err)
	assert.Len(t, res.Discovery.Targets, 2)
	assert.Empty(t, harnessDirs(t, dir))

	a, err := analysis.Read("harness", &out)
	require.NoError(t, err)
	require.Len(t, a.Injectables, 3)
	require.Len(t, a.Definitions, 1)
	require.Len(t, a.Modules, 1)

	store, ok := a.Lookup("StoreSlot", fixtureModule+"/good")
	require.True(t, ok)
	assert.Equal(t, "*"+fixtureModule+"/good.Store", store.Type)

	clock, ok := a.Lookup("Clock", fixtureModule+"/internal/shared")
	require.True(t, ok)
	assert.Equal(t, "*time.Location", clock.Type)

	mod := a.Modules[0]
	assert.Equal(t, "Module", mod.Name)
	require.Len(t, mod.Exports, 1)
	assert.Same(t, store, mod.Exports[0])
	require.Len(t, mod.Imports, 1)
	assert.Equal(t, "ConfigSlot", mod.Imports[0].Name)

	def := a.Definitions[0]
	assert.Equal(t, "ProvideStore", def.Name)
	assert.Same(t, store, def.Export)
}

func TestGenerator_ExtractInitPanic(t *testing.T) {
	dir := writeFixtureModule(t, map[string]string{
		"good/good.go": goodPackage,
		"panicky/panicky.go": `package panicky

var Ready = true

func init() { panic("panicky refuses to load") }
`,
	})

	gen, err := NewGenerator(Options{Dir: dir}, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = gen.Extract(context.Background(), &out)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.HarnessErrorCode))

	var harnessErr *errors.HarnessError
	require.True(t, stderrors.As(err, &harnessErr))
	assert.Contains(t, harnessErr.Stderr, "panicky refuses to load")

	var exitErr *exec.ExitError
	require.True(t, stderrors.As(err, &exitErr))
	assert.NotZero(t, exitErr.ExitCode())

	assert.Empty(t, harnessDirs(t, dir))
}

func TestGenerator_ExtractKeepsHarness(t *testing.T) {
	dir := writeFixtureModule(t, map[string]string{
		"good/good.go": goodPackage,
	})

	gen, err := NewGenerator(Options{Dir: dir, Keep: true}, nil)
	require.NoError(t, err)

	res, err := gen.Extract(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{res.Name}, harnessDirs(t, dir))
}
