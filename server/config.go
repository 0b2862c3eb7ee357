package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds the server's tunables. Zero values fall back to the
// defaults below when loaded through LoadConfig.
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string
	// DataDir is the Badger database directory.
	DataDir string
	// MaxPasteBytes rejects uploads larger than this.
	MaxPasteBytes int64
	// MaxPasteAge caps requested expirations and bounds burn-after-reading
	// pastes that are never read.
	MaxPasteAge time.Duration
}

// DefaultConfig mirrors the historical deployment defaults: everything on
// port 8080, one-day pastes, 3 GiB cap.
func DefaultConfig() Config {
	return Config{
		Listen:        "0.0.0.0:8080",
		DataDir:       "database",
		MaxPasteBytes: 3 << 30,
		MaxPasteAge:   24 * time.Hour,
	}
}

// fileConfig is the YAML shape; durations are spelled as strings
// ("24h", "90m") and parsed with time.ParseDuration.
type fileConfig struct {
	Listen        string `yaml:"listen"`
	DataDir       string `yaml:"data_dir"`
	MaxPasteBytes int64  `yaml:"max_paste_bytes"`
	MaxPasteAge   string `yaml:"max_paste_age"`
}

// LoadConfig reads a YAML config file and fills unset fields with
// defaults. An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if file.Listen != "" {
		cfg.Listen = file.Listen
	}
	if file.DataDir != "" {
		cfg.DataDir = file.DataDir
	}
	if file.MaxPasteBytes > 0 {
		cfg.MaxPasteBytes = file.MaxPasteBytes
	}
	if file.MaxPasteAge != "" {
		age, err := time.ParseDuration(file.MaxPasteAge)
		if err != nil {
			return Config{}, fmt.Errorf("parsing max_paste_age: %w", err)
		}
		if age <= 0 {
			return Config{}, fmt.Errorf("max_paste_age must be positive")
		}
		cfg.MaxPasteAge = age
	}
	return cfg, nil
}
