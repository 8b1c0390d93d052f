// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-crawler/internal/store"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List or delete downloaded papers",
	Long: `Papers lists the downloaded paper records, newest first. With --delete
the named records are removed from the database along with their PDF
files on disk.`,
	RunE: runPapers,
}

func init() {
	papersCmd.Flags().String("db", "papers.db", "papers database path")
	papersCmd.Flags().Int64Slice("delete", nil, "record IDs to delete")

	rootCmd.AddCommand(papersCmd)
}

func runPapers(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	ids, _ := cmd.Flags().GetInt64Slice("delete")

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening papers database: %w", err)
	}
	defer db.Close()

	if len(ids) > 0 {
		return deletePapers(cmd, db, ids)
	}

	papers, err := db.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing papers: %w", err)
	}
	if len(papers) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no papers downloaded yet")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tDOWNLOADED\tTITLE\tAUTHORS")
	for _, p := range papers {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.Source, p.DownloadedAt.Format("2006-01-02"),
			p.Title, types.JoinNames(p.Authors))
	}
	return w.Flush()
}

func deletePapers(cmd *cobra.Command, db *store.Store, ids []int64) error {
	paths, err := db.Delete(cmd.Context(), ids)
	if err != nil {
		return fmt.Errorf("deleting papers: %w", err)
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("removing PDF failed", zap.String("path", path), zap.Error(err))
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d record(s)\n", len(paths))
	return nil
}
