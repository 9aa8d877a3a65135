package depot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// maskWidth is the number of component ids a component bitmask can hold.
const maskWidth = 256

type Config struct {
	// ChunkSize is the number of rows a partition grows by.
	ChunkSize     int           `toml:"chunk_size" yaml:"chunk_size"`
	MaxComponents int           `toml:"max_components" yaml:"max_components"`
	MaxQueries    int           `toml:"max_queries" yaml:"max_queries"`
	Logging       LoggingConfig `toml:"logging" yaml:"logging"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:     64,
		MaxComponents: maskWidth,
		MaxQueries:    1024,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads a .toml, .yaml or .yml file over the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.MaxComponents <= 0 || c.MaxComponents > maskWidth {
		return fmt.Errorf("max_components must be within 1..%d, got %d", maskWidth, c.MaxComponents)
	}
	if c.MaxQueries <= 0 {
		return fmt.Errorf("max_queries must be positive, got %d", c.MaxQueries)
	}
	return nil
}
