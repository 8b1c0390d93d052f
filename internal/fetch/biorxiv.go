// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-crawler/internal/httputil"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// biorxivAPIBase is the bioRxiv details endpoint. Declared as a var so
// tests can substitute an httptest server.
var biorxivAPIBase = "https://api.biorxiv.org/details/biorxiv"

// defaultBiorxivWindow is the listing window used when no date range is
// configured.
const defaultBiorxivWindow = 7 * 24 * time.Hour

// BiorxivBackend queries the bioRxiv details API. The API has no query
// syntax; the backend lists a date window and filters client-side.
type BiorxivBackend struct {
	Client *http.Client
	Logger *zap.Logger
}

// Name returns the source identifier.
func (b *BiorxivBackend) Name() string { return string(types.SourceBiorxiv) }

// FetchByKeyword lists the configured date window and keeps papers whose
// title or abstract matches a keyword and whose author list matches the
// author filter. With neither keywords nor authors configured the
// sequence is empty.
func (b *BiorxivBackend) FetchByKeyword(ctx context.Context, cfg types.FetchConfig) Iterator {
	return newLazyIterator(func() ([]types.Candidate, error) {
		if len(cfg.Keywords) == 0 && len(cfg.Authors) == 0 {
			b.logger().Warn("no keywords or authors configured; bioRxiv keyword query matches nothing")
			return nil, nil
		}

		entries, err := b.list(ctx, cfg)
		if err != nil {
			return nil, err
		}

		keywords := lowerAll(cfg.Keywords)
		var out []types.Candidate
		for _, entry := range entries {
			if !entry.matchesKeywords(keywords, cfg.KeywordField) {
				continue
			}
			if !entry.matchesAuthors(cfg.Authors) {
				continue
			}
			if c, ok := entry.candidate(); ok {
				out = append(out, c)
			}
		}
		return out, nil
	})
}

// FetchByCategory lists the configured date window and keeps papers whose
// subject collection matches one of the selected categories, applying the
// author filter when configured.
func (b *BiorxivBackend) FetchByCategory(ctx context.Context, cfg types.FetchConfig, categories []string) Iterator {
	return newLazyIterator(func() ([]types.Candidate, error) {
		entries, err := b.list(ctx, cfg)
		if err != nil {
			return nil, err
		}

		selected := make(map[string]struct{}, len(categories))
		for _, cat := range categories {
			selected[strings.ToLower(cat)] = struct{}{}
		}

		var out []types.Candidate
		for _, entry := range entries {
			if _, ok := selected[strings.ToLower(entry.Category)]; !ok {
				continue
			}
			if len(cfg.Authors) > 0 && !entry.matchesAuthors(cfg.Authors) {
				continue
			}
			if c, ok := entry.candidate(); ok {
				out = append(out, c)
			}
		}
		return out, nil
	})
}

func (b *BiorxivBackend) list(ctx context.Context, cfg types.FetchConfig) ([]biorxivEntry, error) {
	start, end := cfg.StartDate, cfg.EndDate
	if start == "" || end == "" {
		now := time.Now()
		end = now.Format("2006-01-02")
		start = now.Add(-defaultBiorxivWindow).Format("2006-01-02")
	}

	url := fmt.Sprintf("%s/%s/%s", biorxivAPIBase, start, end)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(b.client(), req, cfg.ListingRetries)
	if err != nil {
		return nil, fmt.Errorf("bioRxiv listing request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Collection []biorxivEntry `json:"collection"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing bioRxiv response: %w", err)
	}
	b.logger().Debug("bioRxiv listing fetched",
		zap.String("window", start+"/"+end),
		zap.Int("count", len(payload.Collection)))
	return payload.Collection, nil
}

func (b *BiorxivBackend) client() *http.Client {
	if b.Client != nil {
		return b.Client
	}
	return http.DefaultClient
}

func (b *BiorxivBackend) logger() *zap.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return zap.NewNop()
}

// biorxivEntry is one collection item from the details API.
type biorxivEntry struct {
	DOI      string `json:"doi"`
	Version  string `json:"version"`
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Category string `json:"category"`
	Abstract string `json:"abstract"`
	Date     string `json:"date"`
}

// matchesKeywords reports whether any keyword appears in the field selected
// by keywordField ("title", "abstract", or "all"). Keywords must already be
// lowercased. An empty keyword list matches everything.
func (e biorxivEntry) matchesKeywords(keywords []string, keywordField string) bool {
	if len(keywords) == 0 {
		return true
	}
	title := strings.ToLower(e.Title)
	abstract := strings.ToLower(e.Abstract)
	for _, kw := range keywords {
		switch keywordField {
		case "title":
			if strings.Contains(title, kw) {
				return true
			}
		case "abstract":
			if strings.Contains(abstract, kw) {
				return true
			}
		default:
			if strings.Contains(title, kw) || strings.Contains(abstract, kw) {
				return true
			}
		}
	}
	return false
}

// matchesAuthors reports whether any configured author appears in the
// entry's author list. An empty filter matches everything.
func (e biorxivEntry) matchesAuthors(authors []string) bool {
	if len(authors) == 0 {
		return true
	}
	entryAuthors := strings.ToLower(e.Authors)
	for _, a := range authors {
		if strings.Contains(entryAuthors, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

// candidate builds the Candidate for this entry. Entries without a DOI and
// version cannot be addressed and are rejected.
func (e biorxivEntry) candidate() (types.Candidate, bool) {
	if e.DOI == "" || e.Version == "" {
		return types.Candidate{}, false
	}

	content := fmt.Sprintf("https://www.biorxiv.org/content/%sv%s", e.DOI, e.Version)
	c := types.Candidate{
		Title:    strings.TrimSpace(e.Title),
		Source:   types.SourceBiorxiv,
		PageURL:  content,
		PDFURL:   content + ".full.pdf",
		Abstract: strings.TrimSpace(e.Abstract),
	}
	if cat := strings.TrimSpace(e.Category); cat != "" {
		c.Categories = []string{cat}
	}
	for _, a := range strings.Split(e.Authors, ";") {
		if a = strings.TrimSpace(a); a != "" {
			c.Authors = append(c.Authors, a)
		}
	}
	if t, err := time.Parse("2006-01-02", e.Date); err == nil {
		c.Published = t
	}
	return c, true
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
