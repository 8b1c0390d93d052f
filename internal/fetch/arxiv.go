// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-crawler/internal/httputil"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	defaultArxivMaxResults = 100
	defaultMaxPerCategory  = 10
	arxivTimestampDayStart = "000000"
	arxivTimestampDayEnd   = "235959"
)

// ArxivBackend queries the arXiv Atom API.
type ArxivBackend struct {
	Client *http.Client
	Logger *zap.Logger
}

// Name returns the source identifier.
func (b *ArxivBackend) Name() string { return string(types.SourceArxiv) }

// FetchByKeyword lists papers matching the configured keywords, authors,
// and date range. A configured ArxivIDs list overrides the query with an
// exact ID lookup. An empty query yields an empty sequence.
func (b *ArxivBackend) FetchByKeyword(ctx context.Context, cfg types.FetchConfig) Iterator {
	return newLazyIterator(func() ([]types.Candidate, error) {
		query := buildArxivQuery(cfg, cfg.Keywords, nil)
		if len(cfg.ArxivIDs) > 0 {
			// An explicit ID list overrides the search query.
			query = ""
		} else if query == "" {
			b.logger().Warn("no keywords, authors, or date range configured; arXiv keyword query is empty")
			return nil, nil
		}

		maxResults := cfg.MaxResults
		if maxResults <= 0 {
			maxResults = defaultArxivMaxResults
		}
		return b.list(ctx, cfg, query, cfg.ArxivIDs, maxResults)
	})
}

// FetchByCategory lists papers in the selected categories. Group names in
// the selection are expanded to their member category codes. Repeated
// abstract URLs within the listing are dropped.
func (b *ArxivBackend) FetchByCategory(ctx context.Context, cfg types.FetchConfig, categories []string) Iterator {
	return newLazyIterator(func() ([]types.Candidate, error) {
		expanded := ExpandArxiv(categories)
		query := buildArxivQuery(cfg, nil, expanded)
		if query == "" {
			b.logger().Warn("no categories, authors, or date range configured; arXiv category query is empty")
			return nil, nil
		}

		perCategory := cfg.MaxPerCategoryFetch
		if perCategory <= 0 {
			perCategory = defaultMaxPerCategory
		}
		results, err := b.list(ctx, cfg, query, nil, perCategory*len(expanded))
		if err != nil {
			return nil, err
		}

		seen := make(map[string]struct{}, len(results))
		unique := results[:0]
		for _, c := range results {
			if _, ok := seen[c.PageURL]; ok {
				continue
			}
			seen[c.PageURL] = struct{}{}
			unique = append(unique, c)
		}
		return unique, nil
	})
}

func (b *ArxivBackend) list(ctx context.Context, cfg types.FetchConfig, query string, idList []string, maxResults int) ([]types.Candidate, error) {
	params := url.Values{}
	params.Set("search_query", query)
	if len(idList) > 0 {
		params.Set("id_list", strings.Join(idList, ","))
	}
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", maxResults))

	sortBy := cfg.SortBy
	if sortBy == "" {
		sortBy = types.SortSubmittedDate
	}
	params.Set("sortBy", string(sortBy))
	if cfg.SortAscending {
		params.Set("sortOrder", "ascending")
	} else {
		params.Set("sortOrder", "descending")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(b.client(), req, cfg.ListingRetries)
	if err != nil {
		return nil, fmt.Errorf("arXiv listing request: %w", err)
	}
	defer resp.Body.Close()

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var out []types.Candidate
	for _, entry := range feed.Entries {
		c, ok := arxivEntryToCandidate(entry)
		if !ok {
			b.logger().Warn("arXiv entry has no PDF link, skipping", zap.String("entry_id", entry.ID))
			continue
		}
		out = append(out, c)
	}
	b.logger().Debug("arXiv listing fetched", zap.Int("count", len(out)))
	return out, nil
}

func (b *ArxivBackend) client() *http.Client {
	if b.Client != nil {
		return b.Client
	}
	return http.DefaultClient
}

func (b *ArxivBackend) logger() *zap.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return zap.NewNop()
}

// buildArxivQuery constructs the search_query expression from keyword,
// author, category, and date-range clauses joined with AND.
func buildArxivQuery(cfg types.FetchConfig, keywords, categories []string) string {
	var parts []string

	if len(keywords) > 0 {
		prefix := map[string]string{
			"all":      "all",
			"title":    "ti",
			"abstract": "abs",
		}[cfg.KeywordField]
		if prefix == "" {
			prefix = "all"
		}
		clauses := make([]string, len(keywords))
		for i, kw := range keywords {
			clauses[i] = fmt.Sprintf("%s:%q", prefix, kw)
		}
		parts = append(parts, "("+strings.Join(clauses, " OR ")+")")
	}

	if len(cfg.Authors) > 0 {
		clauses := make([]string, len(cfg.Authors))
		for i, a := range cfg.Authors {
			clauses[i] = fmt.Sprintf("au:%q", a)
		}
		parts = append(parts, "("+strings.Join(clauses, " OR ")+")")
	}

	if len(categories) > 0 {
		clauses := make([]string, len(categories))
		for i, cat := range categories {
			clauses[i] = "cat:" + cat
		}
		parts = append(parts, "("+strings.Join(clauses, " OR ")+")")
	}

	if cfg.StartDate != "" && cfg.EndDate != "" {
		start := strings.ReplaceAll(cfg.StartDate, "-", "") + arxivTimestampDayStart
		end := strings.ReplaceAll(cfg.EndDate, "-", "") + arxivTimestampDayEnd
		parts = append(parts, fmt.Sprintf("submittedDate:[%s TO %s]", start, end))
	}

	return strings.Join(parts, " AND ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
	Links      []arxivLink     `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

// arxivEntryToCandidate converts an Atom entry. Entries without a PDF link
// are rejected.
func arxivEntryToCandidate(entry arxivEntry) (types.Candidate, bool) {
	var pdfURL string
	for _, link := range entry.Links {
		if link.Title == "pdf" {
			pdfURL = link.Href
			break
		}
	}
	if pdfURL == "" {
		return types.Candidate{}, false
	}

	c := types.Candidate{
		Title:    strings.TrimSpace(entry.Title),
		Source:   types.SourceArxiv,
		PageURL:  entry.ID,
		PDFURL:   pdfURL,
		Abstract: strings.Join(strings.Fields(entry.Summary), " "),
	}
	for _, a := range entry.Authors {
		c.Authors = append(c.Authors, strings.TrimSpace(a.Name))
	}
	for _, cat := range entry.Categories {
		if cat.Term != "" {
			c.Categories = append(c.Categories, cat.Term)
		}
	}
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		c.Published = t
	}
	return c, true
}
