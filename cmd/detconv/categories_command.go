package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"detconv/internal/coco"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	var (
		gtPath        string
		categoryMatch string
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the category mapping read from a ground-truth file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mode := coco.MatchMode(cfg.Convert.CategoryMatch)
			if cmd.Flags().Changed("category-match") {
				mode = coco.MatchMode(categoryMatch)
			}
			mode, err = coco.ParseMatchMode(string(mode))
			if err != nil {
				return err
			}

			logger, err := ctx.logger(cmd.ErrOrStderr(), "")
			if err != nil {
				return err
			}

			f, err := os.Open(gtPath)
			if err != nil {
				return fmt.Errorf("open ground truth: %w", err)
			}
			defer f.Close()
			gt, err := coco.DecodeGroundTruth(f)
			if err != nil {
				return fmt.Errorf("%s: %w", gtPath, err)
			}
			mapping := coco.BuildCategoryMapping(gt, mode, logger)
			categories := mapping.Categories()

			if jsonOutput {
				return writeJSON(cmd, categories)
			}

			out := cmd.OutOrStdout()
			if len(categories) == 0 {
				fmt.Fprintln(out, "No categories found")
				return nil
			}
			rows := make([][]string, 0, len(categories))
			for _, cat := range categories {
				rows = append(rows, []string{strconv.FormatInt(cat.ID, 10), cat.Name})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Name"}, rows, []columnAlignment{alignRight, alignLeft}))
			fmt.Fprintf(out, "Match mode: %s\n", mapping.Mode())
			return nil
		},
	}

	cmd.Flags().StringVar(&gtPath, "gt", "", "Ground-truth COCO file")
	cmd.Flags().StringVar(&categoryMatch, "category-match", "", "Category name matching: exact or fold")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("gt")
	return cmd
}
