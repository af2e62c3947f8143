package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Supported values for DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported values for ENVIRONMENT.
const (
	EnvLocal = "local"
	EnvDev   = "development"
	EnvProd  = "production"
)

// ConfigError describes a single invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Environment     string        `mapstructure:"ENVIRONMENT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	ServerAddress   string        `mapstructure:"SERVER_ADDRESS"`
	DBDriver        string        `mapstructure:"DB_DRIVER"`
	DBSource        string        `mapstructure:"DB_SOURCE"`
	DataFile        string        `mapstructure:"DATA_FILE"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]any{
	"ENVIRONMENT":      EnvProd,
	"LOG_LEVEL":        "info",
	"SERVER_ADDRESS":   "0.0.0.0:8080",
	"DB_DRIVER":        DriverPostgres,
	"DB_SOURCE":        "",
	"DATA_FILE":        "./data/customer_location.csv",
	"REQUEST_TIMEOUT":  "10s",
	"SHUTDOWN_TIMEOUT": "5s",
}

// LoadConfig reads app.env from path and overrides it with environment
// variables. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	var config Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: decode: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Validate checks the values that have no usable default.
func (c Config) Validate() error {
	var errs []error

	if c.DBSource == "" {
		errs = append(errs, &ConfigError{Field: "DB_SOURCE", Message: "required but not set"})
	}
	if c.DBDriver != DriverPostgres && c.DBDriver != DriverSQLite {
		errs = append(errs, &ConfigError{Field: "DB_DRIVER", Message: "must be one of postgres, sqlite"})
	}
	if c.ServerAddress == "" {
		errs = append(errs, &ConfigError{Field: "SERVER_ADDRESS", Message: "cannot be empty"})
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, &ConfigError{Field: "REQUEST_TIMEOUT", Message: "must be positive"})
	}

	return errors.Join(errs...)
}
