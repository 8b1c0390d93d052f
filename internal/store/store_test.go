// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "papers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePaper(n string) *types.Paper {
	return &types.Paper{
		Title:      "Paper " + n,
		Authors:    []string{"Alice Chen", "Bob Okafor"},
		Source:     types.SourceArxiv,
		Categories: []string{"cs.LG", "stat.ML"},
		PageURL:    "http://arxiv.org/abs/" + n,
		PDFURL:     "http://arxiv.org/pdf/" + n,
		FilePath:   "paper/arXiv/2024-01-15/" + n + ".pdf",
	}
}

func TestInsertAndExists(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "http://arxiv.org/pdf/2301.07041")
	require.NoError(t, err)
	assert.False(t, ok)

	id, err := s.Insert(ctx, samplePaper("2301.07041"))
	require.NoError(t, err)
	assert.Positive(t, id)

	ok, err = s.Exists(ctx, "http://arxiv.org/pdf/2301.07041")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInsertDuplicateIsBenign(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Insert(ctx, samplePaper("2301.07041"))
	require.NoError(t, err)
	assert.Positive(t, first)

	// Same content URL again: no error, zero ID, single row.
	second, err := s.Insert(ctx, samplePaper("2301.07041"))
	require.NoError(t, err)
	assert.Zero(t, second)

	papers, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, papers, 1)
}

func TestListRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, samplePaper("2301.07041"))
	require.NoError(t, err)

	papers, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "Paper 2301.07041", p.Title)
	assert.Equal(t, []string{"Alice Chen", "Bob Okafor"}, p.Authors)
	assert.Equal(t, types.SourceArxiv, p.Source)
	assert.Equal(t, []string{"cs.LG", "stat.ML"}, p.Categories)
	assert.Equal(t, "paper/arXiv/2024-01-15/2301.07041.pdf", p.FilePath)
	assert.False(t, p.DownloadedAt.IsZero())
}

func TestDeleteReturnsFilePaths(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.Insert(ctx, samplePaper("2301.07041"))
	require.NoError(t, err)
	id2, err := s.Insert(ctx, samplePaper("2301.08000"))
	require.NoError(t, err)

	paths, err := s.Delete(ctx, []int64{id1, id2, 9999})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"paper/arXiv/2024-01-15/2301.07041.pdf",
		"paper/arXiv/2024-01-15/2301.08000.pdf",
	}, paths)

	papers, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestDeleteEmpty(t *testing.T) {
	s := openTestStore(t)
	paths, err := s.Delete(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
}
