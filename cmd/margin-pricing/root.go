package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/margin-pricing/internal/config"
	"github.com/iwvelando/margin-pricing/internal/engine"
	"github.com/iwvelando/margin-pricing/pkg/constants"
	"github.com/iwvelando/margin-pricing/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the persistent flags and the state built from them.
type app struct {
	configPath   string
	logLevel     string
	outputFormat string
	tenant       string

	conf   *config.Configuration
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "margin-pricing",
		Short: "Price products against margin bands",
		Long: `margin-pricing recommends prices for a target margin, classifies existing
prices into margin bands and simulates the effect of discounts.

Bands come from the published default table, from a tenant table in the
configuration file, or from an inline table.

Example:
  margin-pricing price --cost 100 --margin 0.25
  margin-pricing simulate --price 100 --cost 60 --discount 10 --sales 50`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&a.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	flags.StringVar(&a.tenant, "tenant", "", "tenant whose margin table to use")

	cmd.AddCommand(
		newPriceCmd(a),
		newClassifyCmd(a),
		newSimulateCmd(a),
		newRangesCmd(a),
		newValidateTableCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)

	return cmd
}

// loadConfiguration reads the pricing configuration. A missing file at the
// default location falls back to defaults; a missing file that was named
// explicitly is an error.
func loadConfiguration(path string, explicit bool) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(path)
	if err == nil {
		return conf, nil
	}
	if !explicit {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return nil, fmt.Errorf("failed to load configuration at %s: %w", path, err)
}

// setup loads the configuration and logger for commands that run the engine.
func (a *app) setup(cmd *cobra.Command) error {
	conf, err := loadConfiguration(a.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	logger, err := initializeLogger(conf.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.setup"),
		)
	}

	a.conf = conf
	a.logger = logger
	return nil
}

// resolveFormat picks the output format: CLI override, then configuration, then pretty.
func (a *app) resolveFormat() (string, error) {
	outputFormat := a.conf.Output.Format
	if a.outputFormat != "" {
		outputFormat = a.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return "", err
	}
	return outputFormat, nil
}

func (a *app) newEngine() (*engine.Engine, error) {
	return engine.New(a.logger, a.conf)
}

func (a *app) sync() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
