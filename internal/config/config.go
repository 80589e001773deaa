// Package config handles the configuration directory, API token, and the
// custom field defaults file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "taskpile"

	// DefaultsFile is the custom field defaults filename.
	DefaultsFile = "config.json"

	// TokenEnv is the primary environment variable for the API token.
	TokenEnv = "CLICKUP_API_TOKEN"

	// TokenEnvFallback is an older variable name still honored.
	TokenEnvFallback = "API_TOKEN"
)

// RequiredField declares a custom field the target list is expected to have,
// as configured under "required_custom_fields" in the defaults file.
type RequiredField struct {
	Name            string   `mapstructure:"name"`
	Type            string   `mapstructure:"type"`
	RequiredOptions []string `mapstructure:"required_options"`
	Instructions    []string `mapstructure:"instructions"`
}

// Config holds configuration paths and settings. It is constructed once at
// process start and passed down; nothing reads the environment after that.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Token is the ClickUp API token.
	Token string

	// DefaultFields maps custom field names to default values applied to
	// every created task when the field exists on the target list.
	DefaultFields map[string]any

	// RequiredFields lists fields the "fields" command checks for.
	RequiredFields []RequiredField

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config with the default or specified config directory,
// reads the API token from the environment, and loads the defaults file
// if present.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := &Config{
		Dir:   dir,
		Token: tokenFromEnv(),
	}

	if err := cfg.loadDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultsPath returns the path to the defaults file.
func (c *Config) DefaultsPath() string {
	return filepath.Join(c.Dir, DefaultsFile)
}

// HasToken reports whether an API token was found in the environment.
func (c *Config) HasToken() bool {
	return c.Token != ""
}

func tokenFromEnv() string {
	if tok := os.Getenv(TokenEnv); tok != "" {
		return tok
	}
	return os.Getenv(TokenEnvFallback)
}

// loadDefaults reads the defaults file. A missing file is not an error:
// every setting in it is optional.
func (c *Config) loadDefaults() error {
	v := viper.New()
	v.SetConfigFile(c.DefaultsPath())
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", c.DefaultsPath(), err)
	}

	c.DefaultFields = v.GetStringMap("default_custom_fields")
	if err := v.UnmarshalKey("required_custom_fields", &c.RequiredFields); err != nil {
		return fmt.Errorf("invalid required_custom_fields in %s: %w", c.DefaultsPath(), err)
	}
	return nil
}
