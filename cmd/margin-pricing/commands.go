package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/margin-pricing/internal/config"
	"github.com/iwvelando/margin-pricing/internal/engine"
	"github.com/iwvelando/margin-pricing/internal/output"
	"github.com/iwvelando/margin-pricing/internal/server"
	"github.com/iwvelando/margin-pricing/pkg/constants"
	"github.com/iwvelando/margin-pricing/pkg/margins"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk form of a margin table, in YAML or JSON.
type tableFile struct {
	Ranges []margins.MarginRange `yaml:"ranges" json:"ranges"`
}

// runOperation executes req and writes the response in the resolved format.
func (a *app) runOperation(cmd *cobra.Command, req engine.Request) error {
	if err := a.setup(cmd); err != nil {
		return err
	}
	defer a.sync()

	outputFormat, err := a.resolveFormat()
	if err != nil {
		return err
	}

	e, err := a.newEngine()
	if err != nil {
		return err
	}

	req.Tenant = a.tenant
	resp, err := e.Run(req)
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), outputFormat, resp)
}

func newPriceCmd(a *app) *cobra.Command {
	var (
		cost   float64
		margin float64
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Recommend a price for a cost and target margin",
		Long: `Recommend the price at which a cost yields the target margin, rounded up to
the cent, together with the price range of every band for that cost.

When --margin is omitted the configured default target margin is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := engine.Request{Operation: constants.OperationPrice, Cost: cost}
			if cmd.Flags().Changed("margin") {
				req.TargetMargin = &margin
			}
			return a.runOperation(cmd, req)
		},
	}

	cmd.Flags().Float64VarP(&cost, "cost", "c", 0, "unit cost (required)")
	cmd.Flags().Float64VarP(&margin, "margin", "m", 0, "target margin as a fraction, e.g. 0.25")
	_ = cmd.MarkFlagRequired("cost")

	return cmd
}

func newClassifyCmd(a *app) *cobra.Command {
	var price, cost float64

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Place an existing price into a margin band",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOperation(cmd, engine.Request{
				Operation: constants.OperationClassify,
				Price:     price,
				Cost:      cost,
			})
		},
	}

	cmd.Flags().Float64VarP(&price, "price", "p", 0, "current price (required)")
	cmd.Flags().Float64VarP(&cost, "cost", "c", 0, "unit cost (required)")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("cost")

	return cmd
}

func newSimulateCmd(a *app) *cobra.Command {
	var price, cost, discountPercent, sales float64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a percentage discount",
		Long: `Apply a percentage discount to a price and report the new margin and band,
and the monthly unit sales needed at the new price to keep gross profit
unchanged.

Example:
  margin-pricing simulate --price 100 --cost 60 --discount 10 --sales 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOperation(cmd, engine.Request{
				Operation:       constants.OperationSimulateDiscount,
				Price:           price,
				Cost:            cost,
				DiscountPercent: discountPercent,
				MonthlySales:    sales,
			})
		},
	}

	cmd.Flags().Float64VarP(&price, "price", "p", 0, "current price (required)")
	cmd.Flags().Float64VarP(&cost, "cost", "c", 0, "unit cost (required)")
	cmd.Flags().Float64VarP(&discountPercent, "discount", "d", 0, "discount percent in [0, 100)")
	cmd.Flags().Float64VarP(&sales, "sales", "s", 0, "units sold per month at the current price")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("cost")

	return cmd
}

func newRangesCmd(a *app) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "ranges",
		Short: "Print the margin table in effect",
		Long: `Print the default margin table, or the table of --tenant.

With --yaml the table is written as a file accepted by validate-table and by
the tenants section of the configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			defer a.sync()

			e, err := a.newEngine()
			if err != nil {
				return err
			}
			table, source, err := e.ResolveTable(engine.Request{Tenant: a.tenant})
			if err != nil {
				return err
			}

			if asYAML {
				encoder := yaml.NewEncoder(cmd.OutOrStdout())
				if err := encoder.Encode(tableFile{Ranges: table.Ranges()}); err != nil {
					return err
				}
				return encoder.Close()
			}

			outputFormat, err := a.resolveFormat()
			if err != nil {
				return err
			}
			version := ""
			if source == engine.TableSourceDefault {
				version = margins.DefaultRangesVersion
			}
			return output.WriteRanges(cmd.OutOrStdout(), outputFormat, version, table.Ranges())
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "write the table as YAML")

	return cmd
}

func newValidateTableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-table FILE",
		Short: "Validate a margin table file (YAML or JSON)",
		Long: `Validate a margin table file. The file holds a "ranges" list; JSON files
may write infinite bounds as null, YAML files as .inf and -.inf.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read table file: %w", err)
			}

			// JSON is a subset of YAML, so one decoder serves both.
			var file tableFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("failed to parse table file %s: %w", args[0], err)
			}

			table, err := margins.NewTable(file.Ranges)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: valid margin table with %d ranges\n", args[0], table.Len())
			return err
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var (
		serverConfigPath string
		address          string
		maxBodySize      server.ByteSize
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pricing HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverCfg, err := loadServerConfig(cmd, serverConfigPath, address, maxBodySize)
			if err != nil {
				return err
			}

			configPath, explicit := serverCfg.PricingConfig, false
			if cmd.Flags().Changed("config") {
				configPath, explicit = a.configPath, true
			}
			conf, err := loadConfiguration(configPath, explicit)
			if err != nil {
				return err
			}

			logging := serverCfg.Logging
			if logging == (config.LoggingConfig{}) {
				logging = conf.Logging
			}
			logger, err := initializeLogger(logging, a.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			for _, warning := range conf.ValidateConfiguration() {
				logger.Warn("Configuration warning: "+warning,
					zap.String("op", "main.serve"),
				)
			}

			e, err := engine.New(logger, conf)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := server.NewHandler(logger, e, int64(serverCfg.MaxBodySize), version)
			return server.Run(ctx, logger, serverCfg, handler)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flags.StringVar(&address, "address", "", "listen address, overriding the server configuration")
	flags.Var(&maxBodySize, "max-body-size", "request body limit such as 64K or 1M, overriding the server configuration")

	return cmd
}

// loadServerConfig reads the server configuration and applies the serve
// flags the user set explicitly.
func loadServerConfig(cmd *cobra.Command, path, address string, maxBodySize server.ByteSize) (server.Config, error) {
	cfg, err := server.LoadConfig(path)
	if err != nil {
		return server.Config{}, err
	}
	if cmd.Flags().Changed("address") {
		cfg.Address = address
	}
	if cmd.Flags().Changed("max-body-size") {
		cfg.MaxBodySize = maxBodySize
	}
	return cfg, cfg.Validate()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "margin-pricing version %s (default margin ranges %s)\n",
				version, margins.DefaultRangesVersion)
		},
	}
}
