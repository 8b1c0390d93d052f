// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

const maxFilenameLen = 150

// sanitizeTitle turns a paper title into a safe filename stem. Characters
// that are reserved on common filesystems are dropped, whitespace runs
// collapse to a single space, and the result is capped at maxFilenameLen.
func sanitizeTitle(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, title)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if len(cleaned) > maxFilenameLen {
		cleaned = strings.TrimSpace(cleaned[:maxFilenameLen])
	}
	if cleaned == "" {
		cleaned = "untitled"
	}
	return cleaned
}

// destPath builds the on-disk location for a candidate's PDF:
// <dir>/<source>/<YYYY-MM-DD>/<sanitized title>.pdf.
func destPath(dir string, c types.Candidate, now time.Time) string {
	return filepath.Join(dir, string(c.Source), now.Format("2006-01-02"), sanitizeTitle(c.Title)+".pdf")
}

// sidecarPath is the YAML metadata file stored next to a downloaded PDF.
func sidecarPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".yaml"
}

// writeSidecar records a paper's metadata in YAML beside its PDF.
func writeSidecar(paper *types.Paper, pdfPath string) error {
	data, err := yaml.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(sidecarPath(pdfPath), data, 0o644)
}

// readSidecar loads a paper's YAML metadata record.
func readSidecar(pdfPath string) (*types.Paper, error) {
	data, err := os.ReadFile(sidecarPath(pdfPath))
	if err != nil {
		return nil, err
	}
	var paper types.Paper
	if err := yaml.Unmarshal(data, &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}
