// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

// dedupe removes candidates already seen in this run and candidates whose
// content URL is already persisted. Order is preserved, and the store is
// consulted at most once per content URL. A store read failure keeps the
// candidate; the unique constraint still prevents duplicate rows.
func (c *Crawler) dedupe(ctx context.Context, candidates []types.Candidate) (kept []types.Candidate, dropped int) {
	seen := make(map[string]struct{}, len(candidates))
	for _, cand := range candidates {
		if _, ok := seen[cand.PageURL]; ok {
			dropped++
			continue
		}
		seen[cand.PageURL] = struct{}{}

		exists, err := c.store.Exists(ctx, cand.PDFURL)
		if err != nil {
			c.logger.Warn("store lookup failed, keeping candidate",
				zap.String("pdf_url", cand.PDFURL), zap.Error(err))
		} else if exists {
			c.logger.Debug("skipping already-downloaded paper", zap.String("title", cand.Title))
			dropped++
			continue
		}
		kept = append(kept, cand)
	}
	return kept, dropped
}
