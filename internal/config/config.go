// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iwvelando/margin-pricing/pkg/constants"
	"github.com/iwvelando/margin-pricing/pkg/margins"
	"github.com/iwvelando/margin-pricing/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g.
// MARGIN_PRICING_PRICING_DEFAULTTARGETMARGIN=0.3.
const EnvPrefix = "MARGIN_PRICING"

// lowBandCeiling is the upper bound of the "low" band of the default table.
const lowBandCeiling = 0.15

// Configuration holds all configuration for margin-pricing.
type Configuration struct {
	Logging LoggingConfig           `yaml:"logging,omitempty"`
	Output  OutputConfig            `yaml:"output,omitempty"`
	Pricing PricingConfig           `yaml:"pricing,omitempty"`
	Tenants map[string]TenantConfig `yaml:"tenants,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// PricingConfig holds engine defaults.
type PricingConfig struct {
	DefaultTargetMargin float64 `yaml:"defaultTargetMargin"`
}

// TenantConfig holds one tenant's customized margin table.
type TenantConfig struct {
	Name   string                `yaml:"name,omitempty"`
	Ranges []margins.MarginRange `yaml:"ranges"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Configuration {
	return &Configuration{
		Pricing: PricingConfig{DefaultTargetMargin: constants.DefaultTargetMargin},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
	v.SetDefault("pricing.defaultTargetMargin", constants.DefaultTargetMargin)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks the engine defaults and every tenant table once, so that
// requests never need to re-validate a configured table.
func (c *Configuration) Validate() error {
	if err := validation.ValidateTargetMargin(c.Pricing.DefaultTargetMargin); err != nil {
		return fmt.Errorf("pricing.defaultTargetMargin: %w", err)
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return fmt.Errorf("output.format: %w", err)
		}
	}
	for _, id := range c.TenantIDs() {
		if err := margins.Validate(c.Tenants[id].Ranges); err != nil {
			return fmt.Errorf("tenant %q: %w", id, err)
		}
	}
	return nil
}

// TenantIDs returns the configured tenant ids in sorted order.
func (c *Configuration) TenantIDs() []string {
	ids := make([]string, 0, len(c.Tenants))
	for id := range c.Tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings for settings that are valid but probably unintended.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if band, _, err := margins.DefaultTable.FindRange(c.Pricing.DefaultTargetMargin); err == nil &&
		band.MaxMargin <= lowBandCeiling {
		warnings = append(warnings, fmt.Sprintf("default target margin %.4f falls in the %q band of the default table",
			c.Pricing.DefaultTargetMargin, band.Label))
	}

	for _, id := range c.TenantIDs() {
		tenant := c.Tenants[id]
		labels := make(map[string]bool, len(tenant.Ranges))
		for _, r := range tenant.Ranges {
			if strings.TrimSpace(r.Label) == "" {
				warnings = append(warnings, fmt.Sprintf("tenant %q has a range without a label", id))
				continue
			}
			if labels[r.Label] {
				warnings = append(warnings, fmt.Sprintf("tenant %q uses label %q more than once", id, r.Label))
			}
			labels[r.Label] = true
		}
	}

	return warnings
}
