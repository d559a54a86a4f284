// Package config loads runtime configuration from a YAML file and the
// WIKIMPORT_ environment, and validates it before anything connects to a
// database or the wiki API.
package config

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/viper"
)

const configValidationCode = "CONFIG_VALIDATION_FAILED"

// SourceConfig locates the corpus on disk and the legacy catalog database.
type SourceConfig struct {
	// Root is the directory holding docs/, images/, and files/.
	Root string `mapstructure:"root"`
	// CatalogDriver is the database/sql driver for the legacy catalog.
	CatalogDriver string `mapstructure:"catalog_driver"`
	// CatalogDSN is the connection string for the legacy catalog.
	CatalogDSN string `mapstructure:"catalog_dsn"`
}

// WikiConfig carries the destination wiki endpoint and API token.
type WikiConfig struct {
	URL         string `mapstructure:"url"`
	TokenID     string `mapstructure:"token_id"`
	TokenSecret string `mapstructure:"token_secret"`
}

// StateConfig locates the local sqlite mapping database.
type StateConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the full runtime configuration.
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Wiki    WikiConfig    `mapstructure:"wiki"`
	State   StateConfig   `mapstructure:"state"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load reads configuration from the given file (or ./wikimport.yaml when
// empty), layered under WIKIMPORT_ environment variables, and validates the
// result.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("source.catalog_driver", "mysql")
	v.SetDefault("state.path", "wikimport.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix("WIKIMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("wikimport")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that every field required to run an import is present.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Source,
		validation.Field(&c.Source.Root, validation.Required),
		validation.Field(&c.Source.CatalogDriver, validation.Required),
		validation.Field(&c.Source.CatalogDSN, validation.Required),
	); err != nil {
		return wrapValidationError(err)
	}

	if err := validation.ValidateStruct(&c.Wiki,
		validation.Field(&c.Wiki.URL, validation.Required),
		validation.Field(&c.Wiki.TokenID, validation.Required),
		validation.Field(&c.Wiki.TokenSecret, validation.Required),
	); err != nil {
		return wrapValidationError(err)
	}

	if err := validation.ValidateStruct(&c.Logging,
		validation.Field(&c.Logging.Format,
			validation.In("json", "console", "pretty"),
		),
	); err != nil {
		return wrapValidationError(err)
	}

	return nil
}

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration").
		WithTextCode(configValidationCode)
}
