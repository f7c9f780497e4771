package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"themegen/internal/catalog"
	"themegen/internal/infra"
)

type commandContext struct {
	catalogPath string
	verbose     bool
}

func (c *commandContext) logger(cmd *cobra.Command) zerolog.Logger {
	env := "production"
	if c.verbose {
		env = "development"
	}
	return infra.NewLoggerTo(cmd.ErrOrStderr(), env, true)
}

func (c *commandContext) catalog(platforms []string) (catalog.Catalog, error) {
	cat, err := catalog.Load(c.catalogPath)
	if err != nil {
		return catalog.Catalog{}, err
	}
	return cat.Filter(platforms...)
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "themegen",
		Short:         "Generate browser theme assets from a logo",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "TOML catalog file (built-in catalog when empty)")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Log every artifact")

	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newCatalogCommand(ctx))

	return rootCmd
}
