// Package config loads the server configuration.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by all validation errors.
var ErrInvalidConfig = errors.New("invalid configuration")

// FileName is the base name of the configuration file looked up in the search
// directories. Any extension viper understands (yaml, json, toml) works.
const FileName = "som-lsp"

// Config holds server configuration options.
type Config struct {
	// MaxProblems limits the number of diagnostics published per document.
	MaxProblems int `json:"maxProblems" mapstructure:"maxProblems"`

	// Trace is the LSP trace level: off, messages or verbose.
	Trace string `json:"trace" mapstructure:"trace"`

	Workspace WorkspaceConfig `json:"workspace" mapstructure:"workspace"`
}

// WorkspaceConfig bounds the initial scan of the workspace folders.
type WorkspaceConfig struct {
	MaxFiles    int      `json:"maxFiles" mapstructure:"maxFiles"`
	MaxDepth    int      `json:"maxDepth" mapstructure:"maxDepth"`
	Concurrency int      `json:"concurrency" mapstructure:"concurrency"`
	IgnoreDirs  []string `json:"ignoreDirs" mapstructure:"ignoreDirs"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		MaxProblems: 100,
		Trace:       "off",
		Workspace: WorkspaceConfig{
			MaxFiles:    10000,
			MaxDepth:    20,
			Concurrency: 4,
			IgnoreDirs:  []string{".git", "node_modules", "vendor", "build"},
		},
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("maxProblems", d.MaxProblems)
	v.SetDefault("trace", d.Trace)
	v.SetDefault("workspace.maxFiles", d.Workspace.MaxFiles)
	v.SetDefault("workspace.maxDepth", d.Workspace.MaxDepth)
	v.SetDefault("workspace.concurrency", d.Workspace.Concurrency)
	v.SetDefault("workspace.ignoreDirs", d.Workspace.IgnoreDirs)
}

// Load reads the configuration. An explicit path must exist. Without one, a
// file named FileName is searched in dirs (the working directory when none are
// given) and the defaults are returned if there is none.
func Load(path string, dirs ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		if len(dirs) == 0 {
			dirs = []string{"."}
		}
		for _, dir := range dirs {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", v.ConfigFileUsed(), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Merge returns a copy of c overridden by settings, such as the section sent
// with workspace/didChangeConfiguration. Keys missing from settings keep the
// value of c. The result is validated.
func (c *Config) Merge(settings map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v, c)

	if err := v.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("failed to merge settings: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate reports every out-of-range option, each wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.MaxProblems < 0 {
		invalid("maxProblems must not be negative, got %d", c.MaxProblems)
	}

	switch c.Trace {
	case "off", "messages", "verbose":
	default:
		invalid("trace must be off, messages or verbose, got %q", c.Trace)
	}

	if c.Workspace.MaxFiles <= 0 {
		invalid("workspace.maxFiles must be positive, got %d", c.Workspace.MaxFiles)
	}
	if c.Workspace.MaxDepth <= 0 {
		invalid("workspace.maxDepth must be positive, got %d", c.Workspace.MaxDepth)
	}
	if c.Workspace.Concurrency <= 0 {
		invalid("workspace.concurrency must be positive, got %d", c.Workspace.Concurrency)
	}

	return errors.Join(errs...)
}

// Ignored reports whether a directory with the given base name is skipped
// during the workspace scan.
func (w WorkspaceConfig) Ignored(name string) bool {
	for _, dir := range w.IgnoreDirs {
		if dir == name {
			return true
		}
	}
	return false
}
