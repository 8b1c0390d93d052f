// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl orchestrates discovery, deduplication, diversity
// selection, and download of papers. A Crawler runs at most one crawl at
// a time in a background goroutine and reports milestones through an
// Emitter.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-crawler/internal/download"
	"github.com/pdiddy/paper-crawler/internal/fetch"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// Status describes the lifecycle phase of a Crawler.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusRunning       Status = "running"
	StatusStopRequested Status = "stop_requested"
)

// Mode selects how sources are queried.
type Mode string

const (
	ModeKeyword  Mode = "keyword"
	ModeCategory Mode = "category"
)

// RunState is a snapshot of the crawler's current run.
type RunState struct {
	Status    Status
	RunID     uuid.UUID
	Mode      Mode
	StartedAt time.Time

	// Categories is the per-source category selection of a category-mode
	// run, keyed by lowercase source name.
	Categories map[string][]string
}

var (
	// ErrAlreadyRunning is returned by Start while a run is in progress.
	ErrAlreadyRunning = errors.New("a crawl is already running")

	// ErrNotRunning is returned by Stop when no run is in progress.
	ErrNotRunning = errors.New("no crawl is running")
)

// PaperStore is the persistence surface the crawler needs.
type PaperStore interface {
	Exists(ctx context.Context, pdfURL string) (bool, error)
	Insert(ctx context.Context, paper *types.Paper) (int64, error)
}

// Downloader retrieves a PDF to a local path.
type Downloader interface {
	Fetch(ctx context.Context, url, destPath, referer string, onProgress download.ProgressFunc) error
}

// Crawler coordinates a crawl run end to end. All exported methods are
// safe for concurrent use.
type Crawler struct {
	cfg        types.Config
	backends   []fetch.Backend
	store      PaperStore
	downloader Downloader
	emitter    Emitter
	logger     *zap.Logger
	limiter    *rate.Limiter
	now        func() time.Time

	mu     sync.Mutex
	state  RunState
	stopCh chan struct{}
	doneCh chan struct{}
}

// New builds a Crawler. A nil emitter discards events and a nil logger
// discards logs. The politeness limiter spaces downloads by the
// configured delay.
func New(cfg types.Config, backends []fetch.Backend, store PaperStore, downloader Downloader, emitter Emitter, logger *zap.Logger) *Crawler {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Crawler{
		cfg:        cfg,
		backends:   backends,
		store:      store,
		downloader: downloader,
		emitter:    emitter,
		logger:     logger,
		now:        time.Now,
		state:      RunState{Status: StatusIdle},
	}
	if d := cfg.Download.Delay; d > 0 {
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
	return c
}

// Start launches a crawl in the background and returns its run ID. In
// category mode the selection maps lowercase source names to category
// codes; a nil selection falls back to the configured one. At most one
// run is active at a time; a second Start is rejected with
// ErrAlreadyRunning. The context governs network requests for the whole
// run and is independent of Stop.
func (c *Crawler) Start(ctx context.Context, mode Mode, selection map[string][]string) (uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status != StatusIdle {
		return uuid.Nil, ErrAlreadyRunning
	}

	if mode == ModeCategory && selection == nil {
		selection = c.cfg.Categories
	}
	if mode != ModeCategory {
		selection = nil
	}

	runID := uuid.New()
	c.state = RunState{
		Status:     StatusRunning,
		RunID:      runID,
		Mode:       mode,
		StartedAt:  c.now().UTC(),
		Categories: selection,
	}
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})

	go c.run(ctx, runID, mode, selection, c.stopCh, c.doneCh)
	return runID, nil
}

// Stop asks the running crawl to halt at the next item boundary. The
// in-flight download, if any, is allowed to finish. Stop does not wait;
// use Done to observe completion.
func (c *Crawler) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Status {
	case StatusRunning:
		c.state.Status = StatusStopRequested
		close(c.stopCh)
		return nil
	case StatusStopRequested:
		return nil
	default:
		return ErrNotRunning
	}
}

// Status returns a snapshot of the current run state.
func (c *Crawler) Status() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done returns a channel closed when the current run finishes. With no
// run active the returned channel is already closed.
func (c *Crawler) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doneCh == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.doneCh
}

// run executes one crawl. It always emits exactly one crawl_finished,
// returns the crawler to idle, and closes doneCh, even on panic.
func (c *Crawler) run(ctx context.Context, runID uuid.UUID, mode Mode, selection map[string][]string, stopCh, doneCh chan struct{}) {
	emit := func(evt Event) {
		evt.RunID = runID
		evt.TS = c.now().UTC()
		c.emitter.Emit(evt)
	}

	finalMsg := "crawl finished"
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("crawl panicked", zap.Any("panic", r))
			emit(Event{Type: EventStatusUpdate, Message: fmt.Sprintf("crawl failed: %v", r)})
			finalMsg = "crawl failed"
		}
		c.mu.Lock()
		c.state = RunState{Status: StatusIdle}
		c.stopCh = nil
		c.doneCh = nil
		c.mu.Unlock()
		emit(Event{Type: EventCrawlFinished, Message: finalMsg})
		close(doneCh)
	}()

	emit(Event{Type: EventStatusUpdate, Message: fmt.Sprintf("crawl started in %s mode", mode)})

	pool := c.discover(ctx, mode, selection, stopCh, emit)

	kept, dropped := c.dedupe(ctx, pool)
	if dropped > 0 {
		emit(Event{Type: EventStatusUpdate,
			Message: fmt.Sprintf("skipped %d duplicate or already-downloaded papers", dropped)})
	}

	picked := kept
	if mode == ModeCategory {
		picked = selectWithQuota(kept, c.quotaCategories(selection), c.cfg.Quota)
		if n := len(kept) - len(picked); n > 0 {
			emit(Event{Type: EventStatusUpdate,
				Message: fmt.Sprintf("diversity selection kept %d of %d papers", len(picked), len(kept))})
		}
	}

	downloaded, failed, stopped := c.download(ctx, picked, stopCh, emit)

	if stopped {
		finalMsg = fmt.Sprintf("crawl stopped manually: %d papers downloaded", downloaded)
	} else {
		finalMsg = fmt.Sprintf("crawl complete: %d downloaded, %d failed, %d skipped", downloaded, failed, dropped)
	}
	emit(Event{Type: EventStatusUpdate, Message: finalMsg})
}

// discover queries every backend and merges results into one pool. A
// failing source is reported and skipped; the others still contribute.
func (c *Crawler) discover(ctx context.Context, mode Mode, selection map[string][]string, stopCh chan struct{}, emit func(Event)) []types.Candidate {
	var pool []types.Candidate
	for _, backend := range c.backends {
		if stopRequested(stopCh) {
			return pool
		}

		name := backend.Name()
		var it fetch.Iterator
		switch mode {
		case ModeCategory:
			cats := sourceCategories(selection, name)
			if len(cats) == 0 {
				continue
			}
			it = backend.FetchByCategory(ctx, c.cfg.Fetch, cats)
		default:
			it = backend.FetchByKeyword(ctx, c.cfg.Fetch)
		}

		emit(Event{Type: EventStatusUpdate, Source: name,
			Message: fmt.Sprintf("[%s] fetching papers", name)})

		found, err := fetch.Collect(it)
		if err != nil {
			c.logger.Warn("source fetch failed", zap.String("source", name), zap.Error(err))
			emit(Event{Type: EventStatusUpdate, Source: name,
				Message: fmt.Sprintf("[%s] fetch failed: %v", name, err)})
			continue
		}

		emit(Event{Type: EventStatusUpdate, Source: name,
			Message: fmt.Sprintf("[%s] found %d papers", name, len(found))})
		pool = append(pool, found...)
	}
	return pool
}

// download fetches each selected paper in order, persists it, and writes
// its metadata sidecar. Between items it honors stop requests; the item
// in flight always runs to completion.
func (c *Crawler) download(ctx context.Context, items []types.Candidate, stopCh chan struct{}, emit func(Event)) (downloaded, failed int, stopped bool) {
	total := len(items)
	for i, cand := range items {
		if stopRequested(stopCh) {
			emit(Event{Type: EventStatusUpdate, Message: "stop requested; halting crawl"})
			return downloaded, failed, true
		}

		source := string(cand.Source)
		emit(Event{
			Type:    EventProgressUpdate,
			Source:  source,
			Percent: (i + 1) * 100 / total,
			Message: fmt.Sprintf("[%s] processing: %s", source, truncate(cand.Title, 50)),
		})

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return downloaded, failed, true
			}
		}

		dest := destPath(c.cfg.Download.Dir, cand, c.now())
		item := filepath.Base(dest)
		err := c.downloader.Fetch(ctx, cand.PDFURL, dest, cand.PageURL, func(percent int, _, _ int64) {
			emit(Event{Type: EventDownloadProgress, Source: source, Item: item, Percent: percent})
		})
		if err != nil {
			failed++
			c.logger.Warn("download failed",
				zap.String("title", cand.Title), zap.String("url", cand.PDFURL), zap.Error(err))
			emit(Event{Type: EventStatusUpdate, Source: source,
				Message: fmt.Sprintf("[%s] download failed: %s (%s)", source, cand.Title, cand.PDFURL)})
			continue
		}

		paper := types.PaperFromCandidate(cand, dest)
		paper.DownloadedAt = c.now().UTC()
		id, err := c.store.Insert(ctx, paper)
		if err != nil {
			failed++
			c.logger.Warn("persisting paper failed", zap.String("title", cand.Title), zap.Error(err))
			emit(Event{Type: EventStatusUpdate, Source: source,
				Message: fmt.Sprintf("[%s] failed to record: %s", source, cand.Title)})
			continue
		}
		paper.ID = id

		if err := writeSidecar(paper, dest); err != nil {
			c.logger.Warn("writing metadata sidecar failed", zap.String("path", dest), zap.Error(err))
		}

		downloaded++
		emit(Event{Type: EventPaperDownloaded, Source: source, Paper: paper,
			Message: fmt.Sprintf("[%s] downloaded: %s", source, cand.Title)})
	}
	return downloaded, failed, false
}

// sourceCategories resolves a backend's category selection. arXiv
// selections may name groups, which expand to their member codes.
func sourceCategories(selection map[string][]string, backendName string) []string {
	cats := selection[strings.ToLower(backendName)]
	if strings.EqualFold(backendName, string(types.SourceArxiv)) {
		return fetch.ExpandArxiv(cats)
	}
	return cats
}

// quotaCategories is the union of every source's resolved category
// selection, in selection order, used by the diversity selector.
func (c *Crawler) quotaCategories(selection map[string][]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, backend := range c.backends {
		for _, cat := range sourceCategories(selection, backend.Name()) {
			if _, ok := seen[cat]; ok {
				continue
			}
			seen[cat] = struct{}{}
			out = append(out, cat)
		}
	}
	return out
}

func stopRequested(stopCh chan struct{}) bool {
	select {
	case <-stopCh:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
