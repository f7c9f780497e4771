package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"themegen/internal/domain"
	"themegen/internal/pipeline"
	"themegen/internal/staging"
	"themegen/internal/storage"
)

const lockFileName = ".themegen.lock"

var errPartialBuild = errors.New("some artifacts failed")

type generateOptions struct {
	logo       string
	output     string
	branch     string
	platforms  []string
	stagingDir string
	workers    int
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the catalog for a branch into <output>/<branch>/theme",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, ctx, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.logo, "logo", "l", envOr("LOGO_PATH", "logo.png"), "Source logo")
	cmd.Flags().StringVarP(&opts.output, "output", "o", envOr("OUTPUT_DIR", "out"), "Output root")
	cmd.Flags().StringVarP(&opts.branch, "branch", "b", "", "Branch name (required)")
	cmd.Flags().StringSliceVarP(&opts.platforms, "platform", "p", nil, "Only render these platforms")
	cmd.Flags().StringVar(&opts.stagingDir, "staging-dir", envOr("STAGING_DIR", ""), "Directory for temporary staged logos")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "Concurrent artifact renders")
	_ = cmd.MarkFlagRequired("branch")
	return cmd
}

func runGenerate(cmd *cobra.Command, ctx *commandContext, opts generateOptions) error {
	logger := ctx.logger(cmd)
	cat, err := ctx.catalog(opts.platforms)
	if err != nil {
		return err
	}
	logo, err := domain.LoadLogo(opts.logo)
	if err != nil {
		return err
	}
	root, err := storage.NewFileStore(opts.output)
	if err != nil {
		return err
	}
	store, err := root.Sub(filepath.ToSlash(filepath.Join(opts.branch, "theme")))
	if err != nil {
		return fmt.Errorf("branch %q: %w", opts.branch, err)
	}

	// One generate per output root, mirroring the service's single build slot.
	lock := flock.New(filepath.Join(root.BasePath(), lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock output: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s is locked by another generate", domain.ErrBuildInProgress, root.BasePath())
	}
	defer func() { _ = lock.Unlock() }()

	engine := pipeline.NewEngine(pipeline.Options{
		Stager:  staging.NewManager(opts.stagingDir, nil, logger),
		Logger:  logger,
		Workers: opts.workers,
	})
	result, err := engine.Run(context.Background(), logo, store, cat)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := shouldColorize(out)
	rows := make([][]string, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		rows = append(rows, []string{o.Path, o.Kind, colorStatus(string(o.Status), color), o.Error})
	}
	fmt.Fprintln(out, renderTable([]string{"Artifact", "Kind", "Status", "Error"}, rows))

	failed := len(result.Failures())
	fmt.Fprintf(out, "%d written, %d failed -> %s\n", len(result.Outcomes)-failed, failed, store.BasePath())
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errPartialBuild, failed, len(result.Outcomes))
	}
	return nil
}
