package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/vk/lazygrid/internal/entrypath"
)

// Commands understood by App.Run.
const (
	CommandEval  = "eval"
	CommandCalls = "calls"
)

// DefaultConfigFile is read when no configuration file is named explicitly.
const DefaultConfigFile = "lazygrid.yaml"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths   []string // hcl files or directories
	Entry   string   // entry path; empty evaluates every top-level definition
	Command string
	Output  string // json or yaml

	LogFormat string
	LogLevel  string
	Color     bool
	MaxDepth  int
}

// NewConfig fills in defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one path to a .hcl file or directory is required")
	}
	if cfg.Command == "" {
		cfg.Command = CommandEval
	}
	if cfg.Output == "" {
		cfg.Output = "json"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	switch cfg.Command {
	case CommandEval, CommandCalls:
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}
	switch cfg.Output {
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("invalid output format %q: must be 'json' or 'yaml'", cfg.Output)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth must not be negative, got %d", cfg.MaxDepth)
	}
	if cfg.Entry != "" {
		if _, err := entrypath.Parse(cfg.Entry); err != nil {
			return nil, fmt.Errorf("invalid entry: %w", err)
		}
	}
	return &cfg, nil
}

// FileConfig is the content of a YAML configuration file. Every field is
// optional; command-line values take precedence.
type FileConfig struct {
	Paths     []string `yaml:"paths"`
	Entry     string   `yaml:"entry"`
	Output    string   `yaml:"output"`
	LogLevel  string   `yaml:"log_level"`
	LogFormat string   `yaml:"log_format"`
	Color     *bool    `yaml:"color"`
	MaxDepth  int      `yaml:"max_depth"`
}

// LoadConfigFile reads a configuration file. Unknown keys are rejected. A
// missing file yields an error matching fs.ErrNotExist.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.UnmarshalWithOptions(data, &fc, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// ApplyTo copies the file's values into the fields of cfg that are still
// unset.
func (fc *FileConfig) ApplyTo(cfg *Config) {
	if len(cfg.Paths) == 0 {
		cfg.Paths = fc.Paths
	}
	if cfg.Entry == "" {
		cfg.Entry = fc.Entry
	}
	if cfg.Output == "" {
		cfg.Output = fc.Output
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = fc.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = fc.LogFormat
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = fc.MaxDepth
	}
}
