// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch discovers candidate papers from bibliographic sources.
// Each source (arXiv, bioRxiv) implements the Backend interface with two
// fetch strategies: keyword match and category match.
package fetch

import (
	"context"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

// Backend produces candidate papers from a single bibliographic source.
type Backend interface {
	Name() string

	// FetchByKeyword returns candidates matching the configured keywords
	// and author filters.
	FetchByKeyword(ctx context.Context, cfg types.FetchConfig) Iterator

	// FetchByCategory returns candidates belonging to the selected
	// categories.
	FetchByCategory(ctx context.Context, cfg types.FetchConfig, categories []string) Iterator
}

// Iterator is a pull-based, finite sequence of candidates. It is not
// restartable. After Next returns false, Err reports the terminal error,
// if any, following the sql.Rows convention.
type Iterator interface {
	Next() bool
	Candidate() types.Candidate
	Err() error
}

// Collect drains an iterator into a slice. The candidates pulled before a
// terminal error are returned alongside it.
func Collect(it Iterator) ([]types.Candidate, error) {
	var out []types.Candidate
	for it.Next() {
		out = append(out, it.Candidate())
	}
	return out, it.Err()
}

// lazyIterator defers the listing request to the first Next call and then
// walks the fetched batch.
type lazyIterator struct {
	fetch   func() ([]types.Candidate, error)
	fetched bool
	items   []types.Candidate
	pos     int
	err     error
}

func newLazyIterator(fetch func() ([]types.Candidate, error)) *lazyIterator {
	return &lazyIterator{fetch: fetch, pos: -1}
}

func (it *lazyIterator) Next() bool {
	if !it.fetched {
		it.fetched = true
		it.items, it.err = it.fetch()
		if it.err != nil {
			return false
		}
	}
	if it.pos+1 >= len(it.items) {
		return false
	}
	it.pos++
	return true
}

func (it *lazyIterator) Candidate() types.Candidate {
	if it.pos < 0 || it.pos >= len(it.items) {
		return types.Candidate{}
	}
	return it.items[it.pos]
}

func (it *lazyIterator) Err() error { return it.err }
