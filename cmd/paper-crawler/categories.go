// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-crawler/internal/fetch"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the crawlable arXiv and bioRxiv categories",
	Long: `Categories prints the subject categories a crawl can select. arXiv
categories are grouped; a group name in --arxiv-categories selects every
category in the group.`,
	RunE: runCategories,
}

func init() {
	categoriesCmd.Flags().String("source", "", "limit output to one source: arxiv or biorxiv")

	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	out := cmd.OutOrStdout()

	switch source {
	case "", "arxiv", "biorxiv":
	default:
		return fmt.Errorf("unknown source %q (expected arxiv or biorxiv)", source)
	}

	if source == "" || source == "arxiv" {
		fmt.Fprintln(out, "arXiv:")
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, group := range fetch.ArxivCategories() {
			for _, cat := range group.Categories {
				fmt.Fprintf(w, "  %s\t%s\t%s\n", group.Group, cat.Code, cat.Name)
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if source == "" || source == "biorxiv" {
		fmt.Fprintln(out, "bioRxiv:")
		for _, cat := range fetch.BiorxivCategories() {
			fmt.Fprintf(out, "  %s\n", cat)
		}
	}
	return nil
}
