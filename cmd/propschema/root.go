package main

import (
	"errors"
	"log/slog"

	"github.com/aretw0/propschema"
	"github.com/aretw0/propschema/internal/config"
	"github.com/aretw0/propschema/internal/logging"
	"github.com/aretw0/propschema/pkg/catalog"
	"github.com/spf13/cobra"
)

// errInvalid signals a failed validation; the report has already been printed.
var errInvalid = errors.New("validation failed")

var errNoCatalog = errors.New("no catalog configured: pass --catalog or set catalog in " + config.DefaultPath)

// app carries the state shared by every command once flags are parsed.
type app struct {
	configPath string
	catalogs   []string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "propschema",
		Short: "propschema validates and migrates resource property bags",
		Long: `propschema checks resource property bags against versioned schemas,
fills in declared defaults and reshapes bags from one API version to another.

Schemas are read from YAML or JSON catalog documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "Configuration file")
	rootCmd.PersistentFlags().StringSliceVar(&a.catalogs, "catalog", nil, "Catalog files or directories (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newValidateCmd(a),
		newDefaultsCmd(a),
		newTransformCmd(a),
		newDescribeCmd(a),
		newSchemasCmd(a),
		newGraphCmd(a),
		newCatalogCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("catalog") {
		cfg.Catalog = a.catalogs
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.NewWriter(cmd.ErrOrStderr(), level)
	return nil
}

// loadCatalog reads the configured catalog documents.
func (a *app) loadCatalog(opts ...propschema.Option) (*catalog.Catalog, error) {
	if len(a.cfg.Catalog) == 0 {
		return nil, errNoCatalog
	}
	c := catalog.New(a.catalogOptions(opts...)...)
	if err := c.Load(a.cfg.Catalog...); err != nil {
		return nil, err
	}
	a.logger.Debug("Catalog loaded", "schemas", c.Len(), "paths", a.cfg.Catalog)
	return c, nil
}

func (a *app) catalogOptions(opts ...propschema.Option) []catalog.Option {
	validatorOpts := append([]propschema.Option{propschema.WithLogger(a.logger)}, opts...)
	return []catalog.Option{
		catalog.WithLogger(a.logger),
		catalog.WithValidatorOptions(validatorOpts...),
	}
}
