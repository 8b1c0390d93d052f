// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-crawler/internal/crawl"
	"github.com/pdiddy/paper-crawler/internal/download"
	"github.com/pdiddy/paper-crawler/internal/fetch"
	"github.com/pdiddy/paper-crawler/internal/store"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "paper-crawler/0.1"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run a crawl: discover, select, and download papers",
	Long: `Crawl queries arXiv and bioRxiv, drops papers already downloaded, and
fetches the remaining PDFs into the download directory.

With --arxiv-categories or --biorxiv-categories the crawl runs in
category mode: results are balanced across the selected categories under
the configured quota. Otherwise keywords and authors drive the query.

A SIGINT requests a graceful stop; the download in flight completes and
the crawl halts before the next paper.`,
	RunE: runCrawl,
}

func init() {
	f := crawlCmd.Flags()
	f.StringSlice("keywords", nil, "keywords to search for")
	f.String("keyword-field", "all", "field keywords match against: all, title, or abstract")
	f.StringSlice("authors", nil, "filter results by author name")
	f.StringSlice("arxiv-ids", nil, "fetch these exact arXiv IDs instead of a keyword query")
	f.StringSlice("arxiv-categories", nil, "arXiv categories or groups to crawl (enables category mode)")
	f.StringSlice("biorxiv-categories", nil, "bioRxiv categories to crawl (enables category mode)")
	f.String("from", "", "submission date range start (YYYY-MM-DD)")
	f.String("to", "", "submission date range end (YYYY-MM-DD)")
	f.String("sort-by", string(types.SortSubmittedDate), "arXiv sort criterion: submittedDate, lastUpdatedDate, or relevance")
	f.Bool("ascending", false, "sort arXiv results oldest first")
	f.Int("max-results", 0, "arXiv keyword-mode listing size (default 100)")
	f.Int("max-per-category-fetch", 0, "arXiv per-category listing size (default 10)")
	f.Int("max-total", 0, "cap on papers downloaded per run (0 = no cap)")
	f.Bool("ensure-diversity", false, "balance category representation in category mode")
	f.Int("min-per-category", 1, "papers guaranteed per category while capacity remains")
	f.Int("max-per-category", 0, "ceiling on papers per category (0 = no ceiling)")
	f.String("download-dir", "papers", "base directory for downloaded PDFs")
	f.String("db", "papers.db", "papers database path")
	f.Duration("timeout", defaultTimeout, "HTTP request timeout")
	f.Duration("delay", defaultDelay, "politeness delay between downloads")

	// Config file and environment provide defaults; flags win.
	bindings := map[string]string{
		"fetch.keywords":               "keywords",
		"fetch.keyword_field":          "keyword-field",
		"fetch.authors":                "authors",
		"fetch.arxiv_ids":              "arxiv-ids",
		"categories.arxiv":             "arxiv-categories",
		"categories.biorxiv":           "biorxiv-categories",
		"fetch.start_date":             "from",
		"fetch.end_date":               "to",
		"fetch.sort_by":                "sort-by",
		"fetch.sort_ascending":         "ascending",
		"fetch.max_results":            "max-results",
		"fetch.max_per_category_fetch": "max-per-category-fetch",
		"quota.max_total":              "max-total",
		"quota.ensure_diversity":       "ensure-diversity",
		"quota.min_per_category":       "min-per-category",
		"quota.max_per_category":       "max-per-category",
		"download.dir":                 "download-dir",
		"database_path":                "db",
		"http.timeout":                 "timeout",
		"download.delay":               "delay",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening papers database: %w", err)
	}
	defer db.Close()

	client := &http.Client{Timeout: cfg.Fetch.Timeout}
	backends := []fetch.Backend{
		&fetch.ArxivBackend{Client: client, Logger: logger},
		&fetch.BiorxivBackend{Client: client, Logger: logger},
	}
	dl := download.NewClient(cfg.Download, logger)
	emitter := &crawl.LogEmitter{Logger: logger}
	crawler := crawl.New(cfg, backends, db, dl, emitter, logger)

	mode := crawl.ModeKeyword
	if len(cfg.Categories) > 0 {
		mode = crawl.ModeCategory
	}
	runID, err := crawler.Start(cmd.Context(), mode, cfg.Categories)
	if err != nil {
		return err
	}
	logger.Info("crawl started",
		zap.String("run_id", runID.String()), zap.String("mode", string(mode)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		logger.Info("stop requested, finishing current download")
		if err := crawler.Stop(); err != nil {
			return err
		}
		<-crawler.Done()
	case <-crawler.Done():
	}
	return nil
}

// buildConfig assembles the crawl configuration from viper, which already
// merges config file, environment, and flag values.
func buildConfig() types.Config {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: defaultUserAgent,
	}
	if httpCfg.Timeout <= 0 {
		httpCfg.Timeout = defaultTimeout
	}
	if ua := viper.GetString("http.user_agent"); ua != "" {
		httpCfg.UserAgent = ua
	}

	cfg := types.Config{
		Fetch: types.FetchConfig{
			HTTPConfig:          httpCfg,
			Keywords:            viper.GetStringSlice("fetch.keywords"),
			KeywordField:        viper.GetString("fetch.keyword_field"),
			Authors:             viper.GetStringSlice("fetch.authors"),
			ArxivIDs:            viper.GetStringSlice("fetch.arxiv_ids"),
			StartDate:           viper.GetString("fetch.start_date"),
			EndDate:             viper.GetString("fetch.end_date"),
			SortBy:              types.SortCriterion(viper.GetString("fetch.sort_by")),
			SortAscending:       viper.GetBool("fetch.sort_ascending"),
			MaxResults:          viper.GetInt("fetch.max_results"),
			MaxPerCategoryFetch: viper.GetInt("fetch.max_per_category_fetch"),
			ListingRetries:      viper.GetInt("fetch.listing_retries"),
		},
		Quota: types.QuotaConfig{
			MaxTotal:        viper.GetInt("quota.max_total"),
			EnsureDiversity: viper.GetBool("quota.ensure_diversity"),
			MinPerCategory:  viper.GetInt("quota.min_per_category"),
			MaxPerCategory:  viper.GetInt("quota.max_per_category"),
		},
		Download: types.DownloadConfig{
			HTTPConfig: httpCfg,
			Dir:        viper.GetString("download.dir"),
			MaxRetries: viper.GetInt("download.max_retries"),
			RetryDelay: viper.GetDuration("download.retry_delay"),
			ChunkSize:  viper.GetInt("download.chunk_size"),
			Delay:      viper.GetDuration("download.delay"),
		},
		DatabasePath: viper.GetString("database_path"),
	}

	categories := make(map[string][]string)
	for _, source := range []string{"arxiv", "biorxiv"} {
		if sel := viper.GetStringSlice("categories." + source); len(sel) > 0 {
			categories[source] = sel
		}
	}
	if len(categories) > 0 {
		cfg.Categories = categories
	}
	return cfg
}
