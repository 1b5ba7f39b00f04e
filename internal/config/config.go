// Package config resolves injgraph settings from defaults, an optional
// injgraph.toml, a .env file and INJGRAPH_* environment variables. Command
// line flags are applied last by the CLI.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/toyz/injgraph/internal/errors"
	"github.com/toyz/injgraph/internal/utils"
	"github.com/toyz/injgraph/pkg/analysis"
)

const (
	// FileName is the optional config file looked up in the working directory
	FileName = "injgraph.toml"
	// EnvFile is the optional dotenv file looked up in the working directory
	EnvFile = ".env"
	// EnvPrefix starts every environment variable injgraph reads
	EnvPrefix = "INJGRAPH_"

	DefaultListen = ":8080"
)

// Config holds the settings shared by every command
type Config struct {
	// Root is the namespace marker; empty means the module path
	Root string `toml:"root"`
	// ModuleDir is any directory inside the module to analyze
	ModuleDir string `toml:"module_dir"`
	// Output is the record stream destination; empty or "-" means stdout
	Output string `toml:"output"`
	// KeepHarness leaves the generated harness directory in place
	KeepHarness bool `toml:"keep_harness"`
	// Listen is the address the HTTP server binds
	Listen string `toml:"listen"`
	// CacheSize bounds the number of cached analyses
	CacheSize int `toml:"cache_size"`
	// GoCommand is the go binary used to run the harness
	GoCommand string `toml:"go_command"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		ModuleDir: ".",
		Listen:    DefaultListen,
		CacheSize: analysis.DefaultCacheSize,
		GoCommand: "go",
	}
}

// Load resolves the configuration for the working directory dir
func Load(dir string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(filepath.Join(dir, FileName)); err != nil {
		return nil, err
	}

	envFile := filepath.Join(dir, EnvFile)
	if _, err := os.Stat(envFile); err == nil {
		// godotenv never overrides variables already set in the process
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.WrapConfigurationError(EnvFile, "load", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.WrapConfigurationError(FileName, "parse", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return errors.ConfigurationError(FileName, "unknown keys: "+strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("ROOT"); ok {
		c.Root = v
	}
	if v, ok := lookup("MODULE_DIR"); ok {
		c.ModuleDir = v
	}
	if v, ok := lookup("OUTPUT"); ok {
		c.Output = v
	}
	if v, ok := lookup("LISTEN"); ok {
		c.Listen = v
	}
	if v, ok := lookup("GO"); ok {
		c.GoCommand = v
	}
	if v, ok := lookup("KEEP_HARNESS"); ok {
		keep, err := strconv.ParseBool(v)
		if err != nil {
			return errors.WrapConfigurationError(EnvPrefix+"KEEP_HARNESS", "parse", err)
		}
		c.KeepHarness = keep
	}
	if v, ok := lookup("CACHE_SIZE"); ok {
		size, err := strconv.Atoi(v)
		if err != nil {
			return errors.WrapConfigurationError(EnvPrefix+"CACHE_SIZE", "parse", err)
		}
		c.CacheSize = size
	}
	return nil
}

// Validate checks the resolved settings
func (c *Config) Validate() error {
	checks := []error{
		utils.NotEmpty("module_dir")(c.ModuleDir),
		utils.NotEmpty("go_command")(c.GoCommand),
		utils.NoWhitespace("root")(c.Root),
		utils.NewValidatorChain(utils.NotEmpty("listen"), utils.ListenAddress("listen")).Validate(c.Listen),
		utils.AtLeast("cache_size", 1)(c.CacheSize),
	}
	for _, err := range checks {
		if err != nil {
			return errors.WrapConfigurationError("settings", "validate", err)
		}
	}
	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
