// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-crawler/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SortCriterion selects the ordering of arXiv query results.
type SortCriterion string

const (
	SortSubmittedDate   SortCriterion = "submittedDate"
	SortLastUpdatedDate SortCriterion = "lastUpdatedDate"
	SortRelevance       SortCriterion = "relevance"
)

// FetchConfig holds settings for the source fetchers.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Keywords drive keyword-mode queries. Matching is case-insensitive
	// for sources filtered client-side.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// KeywordField restricts keyword matching: "all", "title", or
	// "abstract" (default "all").
	KeywordField string `json:"keyword_field" yaml:"keyword_field"`

	// Authors filters results by author name on every source.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// ArxivIDs, when set, overrides the arXiv keyword query with an exact
	// ID-list lookup.
	ArxivIDs []string `json:"arxiv_ids,omitempty" yaml:"arxiv_ids,omitempty"`

	// StartDate and EndDate bound the submission window (YYYY-MM-DD).
	// When both are empty the bioRxiv fetcher defaults to the last 7 days.
	StartDate string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty" yaml:"end_date,omitempty"`

	// SortBy and SortAscending control arXiv result ordering. The default
	// is submittedDate descending, i.e. newest first.
	SortBy        SortCriterion `json:"sort_by" yaml:"sort_by"`
	SortAscending bool          `json:"sort_ascending" yaml:"sort_ascending"`

	// MaxResults caps the arXiv keyword-mode listing size (default 100).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxPerCategoryFetch scales the arXiv category-mode listing size:
	// the query requests MaxPerCategoryFetch × len(categories) results
	// (default 10).
	MaxPerCategoryFetch int `json:"max_per_category_fetch" yaml:"max_per_category_fetch"`

	// ListingRetries bounds retries of metadata/listing requests
	// (default 3 attempts).
	ListingRetries int `json:"listing_retries" yaml:"listing_retries"`
}

// QuotaConfig holds the category-diversity selection parameters applied in
// category mode.
type QuotaConfig struct {
	// MaxTotal caps the overall number of papers kept per run. Zero or
	// negative means no cap.
	MaxTotal int `json:"max_total" yaml:"max_total"`

	// EnsureDiversity enables the two-stage fairness selection. When
	// false the first MaxTotal candidates are kept in discovery order.
	EnsureDiversity bool `json:"ensure_diversity" yaml:"ensure_diversity"`

	// MinPerCategory is the fairness floor each configured category is
	// guaranteed while capacity remains.
	MinPerCategory int `json:"min_per_category" yaml:"min_per_category"`

	// MaxPerCategory is the ceiling on papers tagged with any single
	// category. Zero or negative means no ceiling.
	MaxPerCategory int `json:"max_per_category" yaml:"max_per_category"`
}

// DownloadConfig holds settings for the PDF download pipeline.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// Dir is the base directory downloads are placed under, organized as
	// Dir/<source>/<date>/<title>.pdf.
	Dir string `json:"dir" yaml:"dir"`

	// MaxRetries is the total number of download attempts per paper
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryDelay is the base wait between attempts; the actual wait is
	// RetryDelay × attempt number (default 3s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`

	// ChunkSize is the streaming copy block size in bytes (default 32 KiB).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// Delay is the politeness pause between consecutive downloads
	// (default 1s).
	Delay time.Duration `json:"delay" yaml:"delay"`
}

// Config groups all stage configurations for the crawler.
type Config struct {
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	Quota    QuotaConfig    `json:"quota" yaml:"quota"`
	Download DownloadConfig `json:"download" yaml:"download"`

	// Categories maps a source name ("arxiv", "biorxiv") to the selected
	// category codes used in category mode.
	Categories map[string][]string `json:"categories" yaml:"categories"`

	// DatabasePath is the SQLite papers database location.
	DatabasePath string `json:"database_path" yaml:"database_path"`
}
