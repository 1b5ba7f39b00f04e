package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAnalysis(t *testing.T) *Analysis {
	t.Helper()
	a, err := Read("sample", strings.NewReader(sample))
	require.NoError(t, err)
	return a
}

func TestFindInjectables(t *testing.T) {
	a := sampleAnalysis(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Config", "Store", "Clock"}},
		{"store", []string{"Store"}},
		{"TIME", []string{"Clock"}},
		{"example.com/app/config", []string{"Config"}},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var names []string
			for _, inj := range a.FindInjectables(tt.query) {
				names = append(names, inj.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestLookup(t *testing.T) {
	a := sampleAnalysis(t)

	inj, ok := a.Lookup("Store", "example.com/app/store")
	require.True(t, ok)
	assert.Equal(t, "4", inj.Key)

	_, ok = a.Lookup("Store", "example.com/app/config")
	assert.False(t, ok)
}

func TestProvidersOf(t *testing.T) {
	a := sampleAnalysis(t)
	cfg, _ := a.Lookup("Config", "example.com/app/config")
	clock, _ := a.Lookup("Clock", "example.com/app/clock")

	providers := a.ProvidersOf(cfg)
	require.Equal(t, 2, providers.Len())
	assert.Equal(t, "ProvideConfig", providers.Definitions[0].Name)
	assert.Equal(t, "Module", providers.Modules[0].Name)

	assert.Equal(t, 0, a.ProvidersOf(clock).Len())
}

func TestProvidersOf_MatchesByLabel(t *testing.T) {
	a := sampleAnalysis(t)
	detached := &Injectable{
		Entity: Entity{Key: "other-run", Name: "Store", Package: "example.com/app/store"},
		Type:   "*store.Store",
	}

	providers := a.ProvidersOf(detached)
	require.Len(t, providers.Definitions, 1)
	assert.Equal(t, "ProvideStore", providers.Definitions[0].Name)
}

func TestConsumersOf(t *testing.T) {
	a := sampleAnalysis(t)
	clock, _ := a.Lookup("Clock", "example.com/app/clock")

	consumers := a.ConsumersOf(clock)
	require.Len(t, consumers.Definitions, 1)
	assert.Equal(t, "ProvideStore", consumers.Definitions[0].Name)
	require.Len(t, consumers.Modules, 1)
}

func TestImportSnippet(t *testing.T) {
	e := Entity{Name: "ProvideStore", Package: "example.com/app/store"}
	line, selector := e.ImportSnippet()
	assert.Equal(t, `import "example.com/app/store"`, line)
	assert.Equal(t, "store.ProvideStore", selector)
}

func TestImportSnippet_AssumedPackageName(t *testing.T) {
	tests := []struct {
		pkg  string
		want string
	}{
		{"example.com/app/store/v2", "store.Store"},
		{"gopkg.in/yaml.v3", "yaml.Store"},
		{"github.com/mattn/go-isatty", "isatty.Store"},
		{"example.com/app/v", "v.Store"},
		{"v2", "v2.Store"},
	}

	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			_, selector := Entity{Name: "Store", Package: tt.pkg}.ImportSnippet()
			assert.Equal(t, tt.want, selector)
		})
	}
}

func TestInjectable_Equal(t *testing.T) {
	a := &Injectable{Entity: Entity{Key: "1", Name: "A", Package: "p"}, Type: "T"}
	b := &Injectable{Entity: Entity{Key: "2", Name: "A", Package: "p"}, Type: "T"}
	c := &Injectable{Entity: Entity{Key: "1", Name: "A", Package: "p"}, Type: "U"}

	assert.True(t, a.Equal(a))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestCache(t *testing.T) {
	cache, err := NewCache(2)
	require.NoError(t, err)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) (*Analysis, error) {
		loads++
		return Empty(), nil
	}

	first, err := cache.Get(ctx, "app", false, load)
	require.NoError(t, err)
	second, err := cache.Get(ctx, "app", false, load)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, loads)

	third, err := cache.Get(ctx, "app", true, load)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, loads)

	cache.Invalidate("app")
	assert.Equal(t, 0, cache.Len())
}

func TestCache_DoesNotKeepFailures(t *testing.T) {
	cache, err := NewCache(0)
	require.NoError(t, err)

	boom := errors.New("harness failed")
	_, err = cache.Get(context.Background(), "app", false, func(context.Context) (*Analysis, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_SlowLoadDoesNotBlockOtherSources(t *testing.T) {
	cache, err := NewCache(4)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.Get(ctx, "warm", false, func(context.Context) (*Analysis, error) {
		return Empty(), nil
	})
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, "slow", false, func(context.Context) (*Analysis, error) {
			close(started)
			<-release
			return Empty(), nil
		})
		done <- err
	}()
	<-started

	// cached and uncached requests for other sources complete while
	// "slow" is still loading
	_, err = cache.Get(ctx, "warm", false, func(context.Context) (*Analysis, error) {
		t.Fatal("warm source should be served from the cache")
		return nil, nil
	})
	require.NoError(t, err)

	_, err = cache.Get(ctx, "fast", false, func(context.Context) (*Analysis, error) {
		return Empty(), nil
	})
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 3, cache.Len())
}

func TestCache_ConcurrentCallersShareOneLoad(t *testing.T) {
	cache, err := NewCache(4)
	require.NoError(t, err)

	var mu sync.Mutex
	loads := 0
	release := make(chan struct{})
	load := func(context.Context) (*Analysis, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		<-release
		return Empty(), nil
	}

	var wg sync.WaitGroup
	results := make([]*Analysis, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := cache.Get(context.Background(), "app", false, load)
			assert.NoError(t, err)
			results[i] = a
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, 1, loads)
	for _, a := range results[1:] {
		assert.Same(t, results[0], a)
	}
}
