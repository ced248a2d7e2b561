package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hupe1980/membuf"
	"github.com/hupe1980/membuf/server"
)

const envPrefix = "MEMBUF"

// Config is the resolved command configuration. Values come from flags,
// MEMBUF_* environment variables and an optional YAML file, in that order
// of precedence.
type Config struct {
	MaxResources   int           `mapstructure:"max-resources"`
	DefaultSize    int           `mapstructure:"default-size"`
	Count          int           `mapstructure:"count"`
	MaxSize        int           `mapstructure:"max-size"`
	MemoryLimit    int64         `mapstructure:"memory-limit"`
	IOLimit        int64         `mapstructure:"io-limit"`
	Backend        string        `mapstructure:"backend"`
	MaxOpenHandles int           `mapstructure:"max-open-handles"`
	Listen         string        `mapstructure:"listen"`
	SessionTTL     time.Duration `mapstructure:"session-ttl"`
	MaxReadBytes   int           `mapstructure:"max-read-bytes"`
	LogLevel       string        `mapstructure:"log-level"`
	LogFormat      string        `mapstructure:"log-format"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("max-resources", membuf.DefaultMaxResources)
	v.SetDefault("default-size", membuf.DefaultSize)
	v.SetDefault("count", membuf.DefaultInitialCount)
	v.SetDefault("max-size", membuf.DefaultMaxResourceSize)
	v.SetDefault("memory-limit", 0)
	v.SetDefault("io-limit", 0)
	v.SetDefault("backend", membuf.BackendHeap.String())
	v.SetDefault("max-open-handles", 0)
	v.SetDefault("listen", server.DefaultAddr)
	v.SetDefault("session-ttl", server.DefaultSessionTTL)
	v.SetDefault("max-read-bytes", server.DefaultMaxReadBytes)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
	return v
}

// loadConfig reads the config file named by the "config" key, if any, and
// decodes the merged settings.
func loadConfig(v *viper.Viper) (Config, error) {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// logger builds the process logger.
func (c Config) logger() (*membuf.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch c.LogFormat {
	case "text", "":
		return membuf.NewLogger(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return membuf.NewLogger(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.LogFormat)
	}
}

// poolOptions translates the pool settings.
func (c Config) poolOptions() ([]membuf.Option, error) {
	backend, err := membuf.ParseBackend(c.Backend)
	if err != nil {
		return nil, err
	}
	return []membuf.Option{
		membuf.WithMaxResources(c.MaxResources),
		membuf.WithDefaultSize(c.DefaultSize),
		membuf.WithInitialCount(c.Count),
		membuf.WithMaxResourceSize(c.MaxSize),
		membuf.WithMemoryLimit(c.MemoryLimit),
		membuf.WithIOLimit(c.IOLimit),
		membuf.WithBackend(backend),
		membuf.WithMaxOpenHandles(c.MaxOpenHandles),
	}, nil
}

func (c Config) serverConfig() server.Config {
	return server.Config{
		Addr:         c.Listen,
		SessionTTL:   c.SessionTTL,
		MaxReadBytes: c.MaxReadBytes,
	}
}
