// Package config loads the propschema configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = ".propschema.yaml"

// Config represents the structure of .propschema.yaml.
type Config struct {
	// Catalog lists schema document files or directories.
	Catalog  []string `yaml:"catalog" json:"catalog"`
	LogLevel string   `yaml:"log_level" json:"log_level"`
	HTTP     HTTP     `yaml:"http" json:"http"`
	MCP      MCP      `yaml:"mcp" json:"mcp"`
	Redis    Redis    `yaml:"redis" json:"redis"`
	Store    Store    `yaml:"store" json:"store"`
	Metrics  Metrics  `yaml:"metrics" json:"metrics"`
}

type HTTP struct {
	Addr string `yaml:"addr" json:"addr"`
}

type MCP struct {
	// Transport is "stdio" or "sse".
	Transport string `yaml:"transport" json:"transport"`
	Addr      string `yaml:"addr" json:"addr"`
}

// Redis configures the shared catalog store. An empty Addr disables it.
type Redis struct {
	Addr     string   `yaml:"addr" json:"addr"`
	Password string   `yaml:"password" json:"password"`
	DB       int      `yaml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" json:"ttl"`
}

// Store configures where published catalogs live. Dir selects a directory
// store when no Redis address is set. Keys are base64-encoded 32-byte AES keys;
// when EncryptionKey is set documents are encrypted at rest.
type Store struct {
	Dir           string   `yaml:"dir" json:"dir"`
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" json:"fallback_keys"`
}

type Metrics struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Duration is a time.Duration written as a Go duration string ("90s", "1h").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: "info",
		HTTP:     HTTP{Addr: ":8080"},
		MCP:      MCP{Transport: "stdio", Addr: ":8081"},
		Redis:    Redis{Prefix: "propschema:schema:"},
	}
}

// Load reads a configuration file (YAML or JSON, chosen by extension) on top of
// the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	// Relative paths are relative to the config file.
	base := filepath.Dir(path)
	for i, p := range cfg.Catalog {
		cfg.Catalog[i] = resolve(base, p)
	}
	if cfg.Store.Dir != "" {
		cfg.Store.Dir = resolve(base, cfg.Store.Dir)
	}
	return cfg, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
