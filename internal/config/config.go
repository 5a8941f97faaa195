// Package config loads CLI settings from flags, MDCLIP_ environment
// variables and an optional $HOME/.mdclip.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmylchreest/mdclip/pkg/cleaner/normalize"
	"github.com/jmylchreest/mdclip/pkg/richtext"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "MDCLIP"

// Config holds the settings shared by all commands.
type Config struct {
	// Mode selects the normalizer preset: default or clean.
	Mode string `mapstructure:"mode" validate:"oneof=default clean"`

	// Format runs pasted markdown through the markdown/MDX formatter.
	Format bool `mapstructure:"format"`

	// MaxInputSize limits markup size for the full pipeline, e.g. "5MB".
	// "0" disables the limit.
	MaxInputSize string `mapstructure:"max_input_size" validate:"required,bytesize"`

	// RemoveSelectors adds CSS selectors the normalizer removes.
	RemoveSelectors []string `mapstructure:"remove_selectors" validate:"dive,required"`

	// Styles overrides inline styles used for rich copy, keyed by element.
	Styles map[string]string `mapstructure:"styles" validate:"dive,keys,required,endkeys"`

	// Readable extracts the main article before converting fetched pages.
	Readable bool `mapstructure:"readable"`

	// Timeout bounds page fetches.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`

	// Output is the report format for inspect and --stats.
	Output string `mapstructure:"output" validate:"oneof=text json jsonl yaml"`

	Debug    bool   `mapstructure:"debug"`
	Quiet    bool   `mapstructure:"quiet"`
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Mode:         string(normalize.ModeDefault),
		Format:       true,
		MaxInputSize: "5MB",
		Timeout:      30 * time.Second,
		Output:       "text",
	}
}

// SetDefaults registers every key with v so environment variables and
// config files can override them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("mode", d.Mode)
	v.SetDefault("format", d.Format)
	v.SetDefault("max_input_size", d.MaxInputSize)
	v.SetDefault("remove_selectors", []string{})
	v.SetDefault("styles", map[string]string{})
	v.SetDefault("readable", d.Readable)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("output", d.Output)
	v.SetDefault("debug", false)
	v.SetDefault("quiet", false)
	v.SetDefault("log_level", "")
	v.SetDefault("log_json", false)
}

// Setup points v at the config file and environment. An empty cfgFile
// searches $HOME and the working directory for .mdclip.yaml.
func Setup(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".mdclip")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("bytesize", func(fl validator.FieldLevel) bool {
		_, err := humanize.ParseBytes(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// MaxInputBytes returns MaxInputSize in bytes.
func (c *Config) MaxInputBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.MaxInputSize)
	if err != nil {
		return 0, fmt.Errorf("max_input_size: %w", err)
	}
	return int64(n), nil
}

// Normalizer returns the normalizer configuration for Mode with the extra
// selectors applied.
func (c *Config) Normalizer() *normalize.Config {
	var cfg *normalize.Config
	if normalize.Mode(c.Mode) == normalize.ModeClean {
		cfg = normalize.PresetClean()
	} else {
		cfg = normalize.DefaultConfig()
	}
	if len(c.RemoveSelectors) > 0 {
		cfg = cfg.Merge(&normalize.Config{RemoveSelectors: c.RemoveSelectors})
	}
	return cfg
}

// Stylesheet returns the default stylesheet with Styles applied.
func (c *Config) Stylesheet() richtext.Stylesheet {
	return richtext.DefaultStylesheet().Merge(c.Styles)
}

// String summarizes the effective settings for debug logs.
func (c *Config) String() string {
	limit := c.MaxInputSize
	if n, err := c.MaxInputBytes(); err == nil && n > 0 {
		limit = humanize.Bytes(uint64(n))
	}
	return fmt.Sprintf("mode=%s format=%t max_input=%s readable=%t output=%s", c.Mode, c.Format, limit, c.Readable, c.Output)
}
