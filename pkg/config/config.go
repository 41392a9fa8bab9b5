// Package config loads stackbuilder settings.
//
// Settings come from three layers, later ones winning: built-in defaults,
// a TOML file, and STACKBUILDER_* environment variables (for example
// STACKBUILDER_SERVE_ADDR). The file lives at
// $XDG_CONFIG_HOME/stackbuilder/config.toml unless STACKBUILDER_CONFIG or an
// explicit path says otherwise. A missing default file is not an error.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/pipeline"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "STACKBUILDER"

// EnvConfigPath names the variable that overrides the config file path.
const EnvConfigPath = EnvPrefix + "_CONFIG"

// Config holds application configuration.
type Config struct {
	Stack  StackConfig  `mapstructure:"stack" toml:"stack"`
	Render RenderConfig `mapstructure:"render" toml:"render"`
	Serve  ServeConfig  `mapstructure:"serve" toml:"serve"`
	UI     UIConfig     `mapstructure:"ui" toml:"ui"`
}

// StackConfig bounds the layer store.
type StackConfig struct {
	MaxLayers int `mapstructure:"max_layers" toml:"max_layers"` // 0 means unbounded
	History   int `mapstructure:"history" toml:"history"`       // undo steps kept
}

// RenderConfig holds defaults for the render command and the server.
type RenderConfig struct {
	VizType string   `mapstructure:"viz_type" toml:"viz_type"`
	Width   float64  `mapstructure:"width" toml:"width"`
	Margin  float64  `mapstructure:"margin" toml:"margin"`
	Style   string   `mapstructure:"style" toml:"style"`
	Formats []string `mapstructure:"formats" toml:"formats"`
	Scale   float64  `mapstructure:"scale" toml:"scale"`
}

// ServeConfig holds browser server settings.
type ServeConfig struct {
	Addr        string        `mapstructure:"addr" toml:"addr"`
	SessionTTL  time.Duration `mapstructure:"session_ttl" toml:"session_ttl"`
	MaxSessions int           `mapstructure:"max_sessions" toml:"max_sessions"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	ShowOffsets bool `mapstructure:"show_offsets" toml:"show_offsets"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Stack: StackConfig{
			MaxLayers: 0,
			History:   stack.DefaultHistoryLimit,
		},
		Render: RenderConfig{
			VizType: pipeline.DefaultVizType,
			Width:   pipeline.DefaultWidth,
			Margin:  pipeline.DefaultMargin,
			Style:   pipeline.DefaultStyle,
			Formats: []string{pipeline.FormatSVG},
			Scale:   pipeline.DefaultScale,
		},
		Serve: ServeConfig{
			Addr:        "127.0.0.1:8080",
			SessionTTL:  30 * time.Minute,
			MaxSessions: 1000,
		},
		UI: UIConfig{
			ShowOffsets: true,
		},
	}
}

// Dir returns the stackbuilder config directory,
// using XDG_CONFIG_HOME or falling back to ~/.config.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "user config dir")
	}
	return filepath.Join(dir, "stackbuilder"), nil
}

// Path resolves the config file path: explicit, then STACKBUILDER_CONFIG,
// then the default location. explicitly reports whether the path came from
// the first two, in which case the file must exist.
func Path(explicit string) (path string, explicitly bool, err error) {
	if explicit != "" {
		return explicit, true, nil
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, true, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", false, err
	}
	return filepath.Join(dir, "config.toml"), false, nil
}

// Load reads configuration from file and env and validates it.
func Load(explicit string) (Config, error) {
	path, required, err := Path(explicit)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, statErr := os.Stat(path); statErr == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
	} else if required {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, statErr, "config file %s", path)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("stack.max_layers", d.Stack.MaxLayers)
	v.SetDefault("stack.history", d.Stack.History)
	v.SetDefault("render.viz_type", d.Render.VizType)
	v.SetDefault("render.width", d.Render.Width)
	v.SetDefault("render.margin", d.Render.Margin)
	v.SetDefault("render.style", d.Render.Style)
	v.SetDefault("render.formats", d.Render.Formats)
	v.SetDefault("render.scale", d.Render.Scale)
	v.SetDefault("serve.addr", d.Serve.Addr)
	v.SetDefault("serve.session_ttl", d.Serve.SessionTTL)
	v.SetDefault("serve.max_sessions", d.Serve.MaxSessions)
	v.SetDefault("ui.show_offsets", d.UI.ShowOffsets)
}

// Validate checks every setting and returns the first problem.
func (c Config) Validate() error {
	switch {
	case c.Stack.MaxLayers < 0:
		return invalid("stack.max_layers must not be negative")
	case c.Stack.History < 0:
		return invalid("stack.history must not be negative")
	case c.Render.Width < 0:
		return invalid("render.width must not be negative")
	case c.Render.Margin < 0:
		return invalid("render.margin must not be negative")
	case c.Render.Scale <= 0:
		return invalid("render.scale must be positive")
	case c.Serve.Addr == "":
		return invalid("serve.addr is required")
	case c.Serve.SessionTTL <= 0:
		return invalid("serve.session_ttl must be positive")
	case c.Serve.MaxSessions <= 0:
		return invalid("serve.max_sessions must be positive")
	}
	if err := pipeline.ValidateVizType(c.Render.VizType); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.viz_type")
	}
	if err := pipeline.ValidateFormats(c.Render.VizType, c.Render.Formats); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.formats")
	}
	if err := pipeline.ValidateStyle(c.Render.Style); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.style")
	}
	return nil
}

func invalid(msg string) error {
	return errors.New(errors.ErrCodeInvalidConfig, "%s", msg)
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# stackbuilder configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}

// Save writes c to path, creating the directory if needed.
func Save(path string, c Config) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "mkdir config dir")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write config")
	}
	return nil
}

// PipelineOptions converts the render settings into pipeline options.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		MaxLayers: c.Stack.MaxLayers,
		VizType:   c.Render.VizType,
		Width:     c.Render.Width,
		Margin:    c.Render.Margin,
		Style:     c.Render.Style,
		Formats:   append([]string(nil), c.Render.Formats...),
		Scale:     c.Render.Scale,
	}
}

// StoreOptions converts the stack settings into store options.
func (c Config) StoreOptions() []stack.Option {
	return []stack.Option{
		stack.WithMaxLayers(c.Stack.MaxLayers),
		stack.WithHistoryLimit(c.Stack.History),
	}
}
