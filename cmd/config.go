// Copyright © 2024 The BPLint authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/luthersystems/bplint/diagnostic"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the settings shared by every command. Values come from
// flags, BPLINT_* environment variables and the config file, in that order
// of precedence.
type Config struct {
	Rules     []string `mapstructure:"rules"`
	Ext       []string `mapstructure:"ext" validate:"required,dive,ext"`
	Exclude   []string `mapstructure:"exclude"`
	Format    string   `mapstructure:"format" validate:"oneof=text json pretty"`
	Color     string   `mapstructure:"color" validate:"oneof=auto always never"`
	Jobs      int      `mapstructure:"jobs" validate:"min=0"`
	LogLevel  string   `mapstructure:"log-level" validate:"oneof=debug info warn error"`
	LogFormat string   `mapstructure:"log-format" validate:"oneof=text json"`
}

const envPrefix = "BPLINT"

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("ext", validateExt)
}

// validateExt accepts file extensions such as ".html".
func validateExt(fl validator.FieldLevel) bool {
	ext := fl.Field().String()
	return len(ext) > 1 && ext[0] == '.' && !strings.ContainsAny(ext, `/\*?[`)
}

// loadConfig reads the configuration for cmd. The config file is the one
// named by --config, or .bplint.{yaml,json,toml} in the working directory
// or the home directory. A missing default config file is not an error.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetDefault("ext", []string{".html"})
	v.SetDefault("format", "text")
	v.SetDefault("color", "auto")
	v.SetDefault("log-level", "warn")
	v.SetDefault("log-format", "text")
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(".bplint")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the field constraints of cfg.
func (cfg *Config) Validate() error {
	err := configValidate.Struct(cfg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = describeFieldError(fe)
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	name := configKey(fe.StructField())
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "required":
		return fmt.Sprintf("%s must not be empty", name)
	case "ext":
		return fmt.Sprintf("%s: invalid extension %q", name, fe.Value())
	}
	return fmt.Sprintf("%s failed %s", name, fe.Tag())
}

// configKey maps a Config field to its flag/config-file key.
func configKey(field string) string {
	switch field {
	case "LogLevel":
		return "log-level"
	case "LogFormat":
		return "log-format"
	}
	return strings.ToLower(field)
}

// ColorMode converts the color setting for the diagnostic renderer.
func (cfg *Config) ColorMode() diagnostic.ColorMode {
	mode, err := diagnostic.ParseColorMode(cfg.Color)
	if err != nil {
		return diagnostic.ColorAuto
	}
	return mode
}
