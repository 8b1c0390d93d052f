// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download streams PDF content to disk with bounded retries and
// progress reporting.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 3 * time.Second
	defaultChunkSize  = 32 * 1024
)

// ProgressFunc receives streaming progress after each chunk. percent is
// 0-100; it is only reported when the total size is known.
type ProgressFunc func(percent int, downloaded, total int64)

// Client downloads files over HTTP.
type Client struct {
	httpClient *http.Client
	cfg        types.DownloadConfig
	logger     *zap.Logger
}

// NewClient builds a download client. Zero config fields fall back to
// defaults (3 attempts, 3s base delay, 32 KiB chunks).
func NewClient(cfg types.DownloadConfig, logger *zap.Logger) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// Fetch downloads url to destPath, creating parent directories as needed.
// referer, when non-empty, is sent as the Referer header (bioRxiv content
// requires it). onProgress may be nil.
//
// Transport errors and non-2xx statuses are retried up to the configured
// attempt count with a linearly growing delay (delay x attempt number). Any
// partially written file is removed after each failed attempt, so a failed
// Fetch never leaves a truncated file behind.
func (c *Client) Fetch(ctx context.Context, url, destPath, referer string, onProgress ProgressFunc) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		err := c.fetchOnce(ctx, url, destPath, referer, onProgress)
		if err == nil {
			return nil
		}
		lastErr = err
		os.Remove(destPath)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt < c.cfg.MaxRetries {
			wait := c.cfg.RetryDelay * time.Duration(attempt)
			c.logger.Warn("download attempt failed, retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.cfg.MaxRetries),
				zap.Duration("wait", wait),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("download failed after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url, destPath, referer string, onProgress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	total := resp.ContentLength
	var downloaded int64
	buf := make([]byte, c.cfg.ChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				out.Close()
				return fmt.Errorf("writing download: %w", writeErr)
			}
			downloaded += int64(n)
			if total > 0 && onProgress != nil {
				onProgress(int(100*downloaded/total), downloaded, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			return fmt.Errorf("reading download: %w", readErr)
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	if total > 0 && downloaded != total {
		return fmt.Errorf("short download: %d of %d bytes", downloaded, total)
	}
	c.logger.Debug("download complete",
		zap.String("file", filepath.Base(destPath)),
		zap.Int64("bytes", downloaded))
	return nil
}
