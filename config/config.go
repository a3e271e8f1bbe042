// Package config loads runtime configuration from GRIDTABLE_* environment
// variables and an optional gridtable.yaml file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/gridtable/gridtable/output"
	"github.com/gridtable/gridtable/schema"
)

// Default values for configuration.
const (
	DefaultNetwork      = "NEM"
	DefaultStoreBackend = schema.SQLiteBackend
	DefaultStorePath    = "gridtable.db"
	MaxPrecision        = 6
)

// Config holds the runtime configuration for output rendering and the table
// store. The pure table engine itself needs no configuration.
type Config struct {
	Network      string              `mapstructure:"network"`       // default network code for offset lookups
	Output       schema.OutputMode   `mapstructure:"output"`        // text, csv or json
	OutputFile   string              `mapstructure:"output_file"`   // write target; stdout when empty
	Precision    int                 `mapstructure:"precision"`     // decimal places for metric values
	Width        int                 `mapstructure:"width"`         // terminal width override
	StoreBackend schema.StoreBackend `mapstructure:"store_backend"` // sqlite, mysql, postgresql or none
	StoreConnect string              `mapstructure:"store_connect"` // backend connection string or file path
}

// Load reads configuration from the environment and an optional config file,
// applying defaults and validating the result. Environment variables use the
// GRIDTABLE_ prefix, e.g. GRIDTABLE_STORE_BACKEND=postgresql.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GRIDTABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", DefaultNetwork)
	v.SetDefault("output", string(schema.TextOut))
	v.SetDefault("output_file", "")
	v.SetDefault("precision", schema.DefaultPrecision)
	v.SetDefault("width", 0)
	v.SetDefault("store_backend", string(DefaultStoreBackend))
	v.SetDefault("store_connect", DefaultStorePath)

	v.SetConfigName("gridtable")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/gridtable")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that all configured values are usable.
func (c *Config) Validate() error {
	c.Output = schema.OutputMode(strings.ToLower(string(c.Output)))
	switch c.Output {
	case schema.TextOut, schema.CSVOut, schema.JSONOut:
	default:
		return fmt.Errorf("invalid output format %q. must be text, csv, json", c.Output)
	}

	if c.Precision < 0 || c.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, c.Precision)
	}

	c.StoreBackend = schema.StoreBackend(strings.ToLower(string(c.StoreBackend)))
	switch c.StoreBackend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend, schema.NoneBackend:
	default:
		return fmt.Errorf("invalid store backend %q. must be sqlite, mysql, postgresql, or none", c.StoreBackend)
	}

	if !schema.NetworkCode(c.Network).IsValid() {
		return fmt.Errorf("unknown network code %q", c.Network)
	}
	return nil
}

// NetworkCode returns the configured default network.
func (c *Config) NetworkCode() schema.NetworkCode {
	return schema.NetworkCode(c.Network).Normalize()
}

// OutputOptions translates the configuration into rendering options.
func (c *Config) OutputOptions() output.Options {
	return output.Options{
		Mode:      c.Output,
		File:      c.OutputFile,
		Precision: c.Precision,
		Width:     c.Width,
	}
}
