// Package config loads the TOML application configuration shared by the
// CLI and the simulation server.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/mdgachasim/mdgachasim/internal/pricing"
)

// Config is the full application configuration.
type Config struct {
	Log        LogConfig    `toml:"log"`
	Catalog    string       `toml:"catalog"`
	Simulation SimConfig    `toml:"simulation"`
	Server     ServerConfig `toml:"server"`
	Shop       pricing.Shop `toml:"shop"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type SimConfig struct {
	Population int    `toml:"population"`
	Workers    int    `toml:"workers"`
	Seed       uint64 `toml:"seed"`
}

type ServerConfig struct {
	Addr      string `toml:"addr"`
	CacheSize int    `toml:"cache_size"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: slog.LevelInfo, Format: "text"},
		Catalog: "database.yaml",
		Simulation: SimConfig{
			Population: 100,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			CacheSize: 1024,
		},
	}
}

// Load reads a TOML config file, filling unset fields from Default.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := Default()
	if err = toml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Logger builds a slog.Logger per the log section.
func (c *Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     c.Log.Level,
		AddSource: c.Log.AddSource,
	}
	var handler slog.Handler
	if c.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
