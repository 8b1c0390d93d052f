// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// selectWithQuota trims a deduplicated candidate pool to the configured
// capacity. Without diversity it keeps the first MaxTotal candidates in
// input order. With diversity it runs two greedy stages:
//
//  1. Fairness floor: categories are visited in the configured order; each
//     accepts up to MinPerCategory of its candidates (input order) until
//     MaxTotal is reached. A candidate tagged with several categories is
//     accepted once, credited to the first category that reaches it.
//  2. Capacity fill: the full pool is walked in input order; a candidate
//     is accepted only if none of its categories would exceed
//     MaxPerCategory. Saturated candidates are skipped, not revisited.
//
// Category counts include every category an accepted candidate carries,
// so the per-category ceiling holds over the whole selection. MaxTotal
// and MaxPerCategory values <= 0 mean unlimited. A MinPerCategory above
// MaxPerCategory still terminates: the floor wins, and stage 2 accepts
// nothing further for that category.
func selectWithQuota(candidates []types.Candidate, categories []string, q types.QuotaConfig) []types.Candidate {
	if !q.EnsureDiversity {
		if q.MaxTotal > 0 && len(candidates) > q.MaxTotal {
			return candidates[:q.MaxTotal]
		}
		return candidates
	}

	capacityLeft := func(selected []types.Candidate) bool {
		return q.MaxTotal <= 0 || len(selected) < q.MaxTotal
	}

	accepted := make(map[string]struct{}, len(candidates))
	counts := make(map[string]int)
	var selected []types.Candidate

	accept := func(cand types.Candidate) {
		accepted[cand.PageURL] = struct{}{}
		for _, cat := range cand.Categories {
			counts[cat]++
		}
		selected = append(selected, cand)
	}

	// Stage 1: fairness floor. counts[cat] already includes accepted
	// multi-category candidates, so a pick made for an earlier category
	// satisfies this one's floor too.
	for _, cat := range categories {
		for _, cand := range candidates {
			if !capacityLeft(selected) {
				return selected
			}
			if counts[cat] >= q.MinPerCategory {
				break
			}
			if _, ok := accepted[cand.PageURL]; ok {
				continue
			}
			if !cand.HasCategory(cat) {
				continue
			}
			accept(cand)
		}
	}

	// Stage 2: capacity fill under the per-category ceiling.
	for _, cand := range candidates {
		if !capacityLeft(selected) {
			break
		}
		if _, ok := accepted[cand.PageURL]; ok {
			continue
		}
		if q.MaxPerCategory > 0 && saturated(cand, counts, q.MaxPerCategory) {
			continue
		}
		accept(cand)
	}
	return selected
}

// saturated reports whether accepting cand would push any of its
// categories past the ceiling.
func saturated(cand types.Candidate, counts map[string]int, maxPerCategory int) bool {
	for _, cat := range cand.Categories {
		if counts[cat]+1 > maxPerCategory {
			return true
		}
	}
	return false
}
