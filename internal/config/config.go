// Package config loads craftctl settings from a YAML or TOML file with
// environment-variable overrides. Precedence: flags (bound in cmd/craftctl
// via viper) > CRAFTCTL_* env > config file > defaults.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Default config file names, searched in the working directory when no
// explicit path is given.
var configNames = []string{"craftctl.yaml", "craftctl.yml", "craftctl.toml"}

// Duration wraps time.Duration so config files can say "30s" or "5m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler (used by the TOML
// decoder).
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full craftctl configuration.
type Config struct {
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	Password string `yaml:"password" toml:"password"`

	DialTimeout    Duration `yaml:"dial_timeout" toml:"dial_timeout"`
	CommandTimeout Duration `yaml:"command_timeout" toml:"command_timeout"` // 0 = per-kind default
	MaxAttempts    int      `yaml:"max_attempts" toml:"max_attempts"`

	MaxChunkEdge int      `yaml:"max_chunk_edge" toml:"max_chunk_edge"`
	Parallelism  int      `yaml:"parallelism" toml:"parallelism"`
	GroundDepth  int      `yaml:"ground_depth" toml:"ground_depth"`
	ClearBlock   string   `yaml:"clear_block" toml:"clear_block"`
	GroundBlock  string   `yaml:"ground_block" toml:"ground_block"`
	GlobalBudget Duration `yaml:"global_budget" toml:"global_budget"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:         "localhost",
		Port:         25575,
		DialTimeout:  Duration(5 * time.Second),
		MaxAttempts:  3,
		MaxChunkEdge: 32,
		Parallelism:  1,
		GroundDepth:  1,
		ClearBlock:   "air",
		GroundBlock:  "grass_block",
		GlobalBudget: Duration(5 * time.Minute),
	}
}

// Load reads the config file at path (or the first craftctl.{yaml,yml,toml}
// in the working directory when path is empty), then applies env overrides.
// A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func findConfigFile() string {
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	switch filepath.Ext(path) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return nil
}

// applyEnv overlays CRAFTCTL_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CRAFTCTL_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("CRAFTCTL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("CRAFTCTL_RCON_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("CRAFTCTL_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Parallelism = n
		}
	}
	if v := os.Getenv("CRAFTCTL_DIAL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DialTimeout = Duration(d)
		}
	}
}

// Addr returns the host:port dial address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
