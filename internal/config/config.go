// Package config handles rox.toml interpreter configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "rox.toml"

// Config represents a rox.toml file.
type Config struct {
	VM    VM    `toml:"vm"`
	Debug Debug `toml:"debug"`
	Log   Log   `toml:"log"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// VM bounds the virtual machine.
type VM struct {
	MaxStack         int `toml:"max_stack"`
	InstructionLimit int `toml:"instruction_limit"`
}

// Debug enables diagnostic dumps on stderr.
type Debug struct {
	TraceExecution bool `toml:"trace_execution"`
	PrintCode      bool `toml:"print_code"`
}

// Log configures the operational logger.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		VM:  VM{MaxStack: 1024},
		Log: Log{Level: "warn"},
	}
}

// Load parses the configuration file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Parse decodes TOML data on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FindAndLoad loads dir/rox.toml when it exists and returns the defaults
// otherwise.
func FindAndLoad(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return Load(path)
}

// Validate rejects values the interpreter cannot honor.
func (c *Config) Validate() error {
	if c.VM.MaxStack <= 0 {
		return fmt.Errorf("vm.max_stack must be positive, got %d", c.VM.MaxStack)
	}
	if c.VM.InstructionLimit < 0 {
		return fmt.Errorf("vm.instruction_limit must not be negative, got %d", c.VM.InstructionLimit)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l Log) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level %q is not one of debug, info, warn, error", l.Level)
	}
}
