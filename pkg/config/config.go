package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// FileName is the optional config file read from the working directory
const FileName = "annotator.toml"

// EnvPrefix prefixes environment overrides, e.g. ANNOTATOR_DATA_DIR=/tmp/graph
const EnvPrefix = "ANNOTATOR_"

// Config holds all configuration for the application
type Config struct {
	Document string     `koanf:"document"` // JSON document edited and watched
	Store    string     `koanf:"store"`    // "file" or "badger"
	Data     DataConfig `koanf:"data"`
	Port     int        `koanf:"port"`
	Watch    bool       `koanf:"watch"`
	Open     bool       `koanf:"open"`
	Strategy string     `koanf:"strategy"`
	Directed bool       `koanf:"directed"`
	Strict   bool       `koanf:"strict"`
	Max      MaxConfig  `koanf:"max"`
	Log      LogConfig  `koanf:"log"`
}

type DataConfig struct {
	Dir string `koanf:"dir"` // Badger directory
}

type MaxConfig struct {
	Steps int `koanf:"steps"` // Search budget, 0 is unlimited
}

type LogConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// Defaults returns the lowest-priority configuration layer
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"document": "annotations.json",
		"store":    "file",
		"data":     map[string]interface{}{"dir": ".annotator"},
		"port":     8080,
		"watch":    false,
		"open":     true,
		"strategy": "depth-first",
		"directed": false,
		"strict":   false,
		"max":      map[string]interface{}{"steps": 0},
		"log":      map[string]interface{}{"level": "info", "json": false},
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return load(FileName, f)
}

func load(path string, f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	// 3. Environment Variables
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags: --data-dir maps to data.dir
	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
			return FlagKey(fl.Name), posflag.FlagVal(f, fl)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FlagKey converts a flag name to its config key
func FlagKey(name string) string {
	return strings.ReplaceAll(name, "-", ".")
}

// Validate checks values koanf cannot type-check
func (c *Config) Validate() error {
	switch c.Store {
	case "file", "badger":
	default:
		return fmt.Errorf("invalid store %q: expected file or badger", c.Store)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Max.Steps < 0 {
		return fmt.Errorf("invalid max.steps %d", c.Max.Steps)
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
