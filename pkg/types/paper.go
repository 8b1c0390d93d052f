// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-crawler
// pipeline: candidate records produced by source fetchers, persisted
// paper records, and the configuration blocks each stage consumes.
package types

import (
	"strings"
	"time"
)

// Source identifies a bibliographic provider.
type Source string

const (
	SourceArxiv   Source = "arXiv"
	SourceBiorxiv Source = "bioRxiv"
)

// Candidate is a paper discovered by a source fetcher but not yet
// downloaded or persisted. It is immutable once produced; the abstract
// page URL is the natural key.
type Candidate struct {
	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Source identifies which provider discovered this paper.
	Source Source `json:"source" yaml:"source"`

	// Categories lists the subject categories the paper is tagged with.
	Categories []string `json:"categories" yaml:"categories"`

	// PageURL is the abstract page URL. It is unique per paper and serves
	// as the natural key for in-run deduplication.
	PageURL string `json:"page_url" yaml:"page_url"`

	// PDFURL is the content download URL, also unique per paper. The
	// persisted store keys records on it.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Published is the publication or preprint date.
	Published time.Time `json:"published" yaml:"published"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`
}

// HasCategory reports whether the candidate is tagged with category.
func (c Candidate) HasCategory(category string) bool {
	for _, cat := range c.Categories {
		if cat == category {
			return true
		}
	}
	return false
}

// Paper is a persisted record of a downloaded paper.
type Paper struct {
	// ID is the store-assigned row identifier.
	ID int64 `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Source identifies which provider the paper came from.
	Source Source `json:"source" yaml:"source"`

	// Categories lists the subject categories the paper is tagged with.
	Categories []string `json:"categories" yaml:"categories"`

	// PageURL is the abstract page URL.
	PageURL string `json:"page_url" yaml:"page_url"`

	// PDFURL is the content URL the PDF was fetched from. Globally unique.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Published is the publication or preprint date.
	Published time.Time `json:"published" yaml:"published"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// FilePath is the local filesystem path of the downloaded PDF.
	FilePath string `json:"file_path" yaml:"file_path"`

	// DownloadedAt records when the paper was persisted.
	DownloadedAt time.Time `json:"downloaded_at" yaml:"downloaded_at"`
}

// PaperFromCandidate promotes a downloaded candidate to a persisted record.
func PaperFromCandidate(c Candidate, filePath string) *Paper {
	return &Paper{
		Title:      c.Title,
		Authors:    c.Authors,
		Source:     c.Source,
		Categories: c.Categories,
		PageURL:    c.PageURL,
		PDFURL:     c.PDFURL,
		Published:  c.Published,
		Abstract:   c.Abstract,
		FilePath:   filePath,
	}
}

// JoinNames renders an author or category list in the comma-joined form
// used for storage and display.
func JoinNames(names []string) string {
	return strings.Join(names, ", ")
}

// SplitNames parses the comma-joined storage form back into a list.
func SplitNames(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
