package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the contents of a ul.yaml settings file.
//
//	repl:
//	  prompt: "lisp> "
//	  color: auto
//	history:
//	  enabled: true
//	  path: ~/.ul_history.db
//	eval:
//	  max_depth: 10000
//	serve:
//	  addr: 127.0.0.1:7433
type Config struct {
	Repl    ReplConfig    `yaml:"repl"`
	History HistoryConfig `yaml:"history"`
	Eval    EvalConfig    `yaml:"eval"`
	Serve   ServeConfig   `yaml:"serve"`
}

type ReplConfig struct {
	Prompt       string `yaml:"prompt,omitempty"`
	Continuation string `yaml:"continuation,omitempty"`
	// Color is auto, always or never.
	Color string `yaml:"color,omitempty"`
}

type HistoryConfig struct {
	// Enabled is a pointer so an absent key keeps the default.
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

type EvalConfig struct {
	MaxDepth int `yaml:"max_depth,omitempty"`
}

type ServeConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Default returns the settings used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig walks up from dir looking for ul.yaml or ul.yml. It returns ""
// with a nil error when there is none.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "ul.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		candidate = filepath.Join(dir, "ul.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Resolve loads the file named by UL_CONFIG, else the nearest ul.yaml above
// dir, else the defaults.
func Resolve(dir string) (*Config, error) {
	if path := os.Getenv(ConfigEnvVar); path != "" {
		return LoadConfig(path)
	}
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return LoadConfig(path)
}

func (c *Config) validate(path string) error {
	switch c.Repl.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: repl.color: must be %s, %s or %s, got %q",
			path, ColorAuto, ColorAlways, ColorNever, c.Repl.Color)
	}
	if c.Eval.MaxDepth < 0 {
		return fmt.Errorf("%s: eval.max_depth: must not be negative, got %d", path, c.Eval.MaxDepth)
	}
	if c.Serve.Addr != "" && !strings.Contains(c.Serve.Addr, ":") {
		return fmt.Errorf("%s: serve.addr: expected host:port, got %q", path, c.Serve.Addr)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Repl.Prompt == "" {
		c.Repl.Prompt = DefaultPrompt
	}
	if c.Repl.Continuation == "" {
		c.Repl.Continuation = DefaultContinuation
	}
	if c.Repl.Color == "" {
		c.Repl.Color = ColorAuto
	}
	if c.History.Enabled == nil {
		enabled := true
		c.History.Enabled = &enabled
	}
	if c.History.Path == "" {
		c.History.Path = defaultHistoryPath()
	} else {
		c.History.Path = expandHome(c.History.Path)
	}
	if c.Eval.MaxDepth == 0 {
		c.Eval.MaxDepth = DefaultMaxDepth
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultServeAddr
	}
}

// HistoryEnabled reports whether the transcript store should be opened.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultHistoryFile
	}
	return filepath.Join(home, DefaultHistoryFile)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
