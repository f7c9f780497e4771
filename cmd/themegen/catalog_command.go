package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"themegen/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var platforms []string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the artifacts a build renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := ctx.catalog(platforms)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Platform", "ID", "Kind", "Size", "Outputs"},
				catalogRows(cat),
				4, 5,
			))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&platforms, "platform", "p", nil, "Only list these platforms")
	return cmd
}

func catalogRows(cat catalog.Catalog) [][]string {
	rows := make([][]string, 0, len(cat.Recipes))
	for _, r := range cat.Recipes {
		size := "source"
		switch {
		case r.Kind == catalog.KindDrawable:
			parts := make([]string, 0, len(r.Buckets))
			for _, b := range r.Buckets {
				parts = append(parts, strconv.Itoa(r.BucketSize(b)))
			}
			size = strings.Join(parts, "/")
		case r.Width > 0 && r.Height > 0 && r.Height != r.Width:
			size = fmt.Sprintf("%dx%d", r.Width, r.Height)
		case r.Width > 0:
			size = strconv.Itoa(r.Width)
		}
		rows = append(rows, []string{platformTitle(r.Platform), r.ID, string(r.Kind), size, strconv.Itoa(len(r.Outputs()))})
	}
	return rows
}
