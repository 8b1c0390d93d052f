// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-crawler/internal/download"
	"github.com/pdiddy/paper-crawler/internal/fetch"
	"github.com/pdiddy/paper-crawler/pkg/types"
)

// sliceIterator yields a fixed candidate list, optionally ending with an
// error, mirroring the live fetcher contract.
type sliceIterator struct {
	items []types.Candidate
	pos   int
	err   error
}

func (it *sliceIterator) Next() bool {
	if it.pos >= len(it.items) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator) Candidate() types.Candidate { return it.items[it.pos-1] }
func (it *sliceIterator) Err() error                 { return it.err }

type fakeBackend struct {
	name       string
	items      []types.Candidate
	err        error
	categories []string // selection passed to the last FetchByCategory
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) FetchByKeyword(ctx context.Context, cfg types.FetchConfig) fetch.Iterator {
	return &sliceIterator{items: b.items, err: b.err}
}

func (b *fakeBackend) FetchByCategory(ctx context.Context, cfg types.FetchConfig, categories []string) fetch.Iterator {
	b.categories = categories
	return &sliceIterator{items: b.items, err: b.err}
}

type fakeStore struct {
	mu       sync.Mutex
	existing map[string]bool
	inserted []*types.Paper
	insertFn func(*types.Paper) (int64, error)
}

func (s *fakeStore) Exists(ctx context.Context, pdfURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existing[pdfURL], nil
}

func (s *fakeStore) Insert(ctx context.Context, paper *types.Paper) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertFn != nil {
		return s.insertFn(paper)
	}
	s.inserted = append(s.inserted, paper)
	return int64(len(s.inserted)), nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserted)
}

type fakeDownloader struct {
	mu      sync.Mutex
	urls    []string
	failing map[string]bool
	onCall  func(call int) // invoked while a download is in flight
	write   bool           // create the destination file on success
}

func (d *fakeDownloader) Fetch(ctx context.Context, url, destPath, referer string, onProgress download.ProgressFunc) error {
	d.mu.Lock()
	d.urls = append(d.urls, url)
	call := len(d.urls)
	d.mu.Unlock()

	if d.onCall != nil {
		d.onCall(call)
	}
	if d.failing[url] {
		return fmt.Errorf("fetching %s: connection reset", url)
	}
	if onProgress != nil {
		onProgress(100, 10, 10)
	}
	if d.write {
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return err
		}
		return os.WriteFile(destPath, []byte("%PDF-1.4"), 0o644)
	}
	return nil
}

func (d *fakeDownloader) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.urls)
}

// recorder collects events in emission order.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Emit(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) ofType(t EventType) []Event {
	var out []Event
	for _, evt := range r.all() {
		if evt.Type == t {
			out = append(out, evt)
		}
	}
	return out
}

func crawlCand(id string, source types.Source, cats ...string) types.Candidate {
	return types.Candidate{
		Title:      "Paper " + id,
		Authors:    []string{"Ada Lovelace"},
		Source:     source,
		Categories: cats,
		PageURL:    "http://example.org/abs/" + id,
		PDFURL:     "http://example.org/pdf/" + id,
		Published:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func awaitDone(t *testing.T, c *Crawler) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("crawl did not finish in time")
	}
}

func TestCrawlerDownloadsMergedPool(t *testing.T) {
	arxiv := &fakeBackend{name: "arXiv", items: []types.Candidate{
		crawlCand("a1", types.SourceArxiv, "cs.AI"),
		crawlCand("a2", types.SourceArxiv, "cs.LG"),
	}}
	biorxiv := &fakeBackend{name: "bioRxiv", items: []types.Candidate{
		crawlCand("b1", types.SourceBiorxiv, "neuroscience"),
	}}
	store := &fakeStore{}
	dl := &fakeDownloader{write: true}
	rec := &recorder{}

	cfg := types.Config{}
	cfg.Download.Dir = t.TempDir()
	c := New(cfg, []fetch.Backend{arxiv, biorxiv}, store, dl, rec, nil)

	runID, err := c.Start(context.Background(), ModeKeyword, nil)
	require.NoError(t, err)
	awaitDone(t, c)

	assert.Equal(t, 3, store.count())
	assert.Equal(t, 3, dl.calls())
	assert.Equal(t, StatusIdle, c.Status().Status)

	events := rec.all()
	require.NotEmpty(t, events)
	finished := rec.ofType(EventCrawlFinished)
	require.Len(t, finished, 1)
	assert.Equal(t, EventCrawlFinished, events[len(events)-1].Type, "crawl_finished must be last")
	assert.Len(t, rec.ofType(EventPaperDownloaded), 3)
	for _, evt := range events {
		assert.Equal(t, runID, evt.RunID)
	}

	// The downloaded PDF gets a YAML sidecar next to it.
	var sidecars int
	for _, p := range store.inserted {
		got, err := readSidecar(p.FilePath)
		if assert.NoError(t, err) {
			assert.Equal(t, p.Title, got.Title)
			sidecars++
		}
	}
	assert.Equal(t, 3, sidecars)
}

func TestCrawlerSingleFlight(t *testing.T) {
	release := make(chan struct{})
	dl := &fakeDownloader{onCall: func(int) { <-release }}
	backend := &fakeBackend{name: "arXiv", items: []types.Candidate{crawlCand("a1", types.SourceArxiv)}}
	c := New(types.Config{}, []fetch.Backend{backend}, &fakeStore{}, dl, nil, nil)

	_, err := c.Start(context.Background(), ModeKeyword, nil)
	require.NoError(t, err)

	_, err = c.Start(context.Background(), ModeKeyword, nil)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(release)
	awaitDone(t, c)
	assert.Equal(t, StatusIdle, c.Status().Status)

	// Once idle the crawler accepts a new run.
	_, err = c.Start(context.Background(), ModeKeyword, nil)
	require.NoError(t, err)
	awaitDone(t, c)
}

func TestCrawlerStopHaltsBetweenItems(t *testing.T) {
	var items []types.Candidate
	for i := 0; i < 10; i++ {
		items = append(items, crawlCand(fmt.Sprintf("a%d", i), types.SourceArxiv))
	}
	backend := &fakeBackend{name: "arXiv", items: items}
	store := &fakeStore{}
	rec := &recorder{}

	var c *Crawler
	dl := &fakeDownloader{}
	dl.onCall = func(call int) {
		// Request a stop while the second download is in flight. The
		// in-flight item must still complete.
		if call == 2 {
			assert.NoError(t, c.Stop())
			assert.Equal(t, StatusStopRequested, c.Status().Status)
		}
	}
	c = New(types.Config{}, []fetch.Backend{backend}, store, dl, rec, nil)

	_, err := c.Start(context.Background(), ModeKeyword, nil)
	require.NoError(t, err)
	awaitDone(t, c)

	assert.Equal(t, 2, dl.calls(), "no further downloads after the stop request")
	assert.Equal(t, 2, store.count())
	assert.Equal(t, StatusIdle, c.Status().Status)

	finished := rec.ofType(EventCrawlFinished)
	require.Len(t, finished, 1)
	assert.Contains(t, finished[0].Message, "stopped manually")
}

func TestCrawlerStopWhenIdle(t *testing.T) {
	c := New(types.Config{}, nil, &fakeStore{}, &fakeDownloader{}, nil, nil)
	assert.ErrorIs(t, c.Stop(), ErrNotRunning)
}

func TestCrawlerSourceFailureDoesNotAbortRun(t *testing.T) {
	broken := &fakeBackend{name: "arXiv", err: fmt.Errorf("listing request: status 502")}
	healthy := &fakeBackend{name: "bioRxiv", items: []types.Candidate{crawlCand("b1", types.SourceBiorxiv)}}
	store := &fakeStore{}
	rec := &recorder{}
	c := New(types.Config{}, []fetch.Backend{broken, healthy}, store, &fakeDownloader{}, rec, nil)

	_, err := c.Start(context.Background(), ModeKeyword, nil)
	require.NoError(t, err)
	awaitDone(t, c)

	assert.Equal(t, 1, store.count())
	var reported bool
	for _, evt := range rec.ofType(EventStatusUpdate) {
		if strings.Contains(evt.Message, "fetch failed") && evt.Source == "arXiv" {
			reported = true
		}
	}
	assert.True(t, reported, "the failing source is reported")
	require.Len(t, rec.ofType(EventCrawlFinished), 1)
}

func TestCrawlerDownloadFailureContinues(t *testing.T) {
	backend := &fakeBackend{name: "arXiv", items: []types.Candidate{
		crawlCand("a1", types.SourceArxiv),
		crawlCand("a2", types.SourceArxiv),
	}}
	store := &fakeStore{}
	dl := &fakeDownloader{failing: map[string]bool{"http://example.org/pdf/a1": true}}
	rec := &recorder{}
	c := New(types.Config{}, []fetch.Backend{backend}, store, dl, rec, nil)

	_, err := c.Start(context.Background(), ModeKeyword, nil)
	require.NoError(t, err)
	awaitDone(t, c)

	assert.Equal(t, 1, store.count())
	assert.Equal(t, 2, dl.calls())

	finished := rec.ofType(EventCrawlFinished)
	require.Len(t, finished, 1)
	assert.Contains(t, finished[0].Message, "1 downloaded, 1 failed")
}

func TestCrawlerSkipsAlreadyDownloaded(t *testing.T) {
	backend := &fakeBackend{name: "arXiv", items: []types.Candidate{
		crawlCand("a1", types.SourceArxiv),
		crawlCand("a2", types.SourceArxiv),
		crawlCand("a1", types.SourceArxiv), // duplicate within the run
	}}
	store := &fakeStore{existing: map[string]bool{"http://example.org/pdf/a2": true}}
	dl := &fakeDownloader{}
	c := New(types.Config{}, []fetch.Backend{backend}, store, dl, nil, nil)

	_, err := c.Start(context.Background(), ModeKeyword, nil)
	require.NoError(t, err)
	awaitDone(t, c)

	assert.Equal(t, 1, dl.calls())
	assert.Equal(t, 1, store.count())
}

func TestCrawlerCategoryModeExpandsAndSelects(t *testing.T) {
	var items []types.Candidate
	for i := 0; i < 5; i++ {
		items = append(items, crawlCand(fmt.Sprintf("a%d", i), types.SourceArxiv, "econ.EM"))
	}
	items = append(items, crawlCand("th", types.SourceArxiv, "econ.TH"))
	backend := &fakeBackend{name: "arXiv", items: items}
	store := &fakeStore{}

	cfg := types.Config{
		Categories: map[string][]string{"arxiv": {"Economics"}},
		Quota: types.QuotaConfig{
			MaxTotal:        3,
			EnsureDiversity: true,
			MinPerCategory:  1,
			MaxPerCategory:  2,
		},
	}
	c := New(cfg, []fetch.Backend{backend}, store, &fakeDownloader{}, nil, nil)

	// A nil selection in category mode falls back to the configured one.
	_, err := c.Start(context.Background(), ModeCategory, nil)
	require.NoError(t, err)
	awaitDone(t, c)

	assert.Equal(t, []string{"econ.EM", "econ.GN", "econ.TH"}, backend.categories,
		"group selections expand to member codes")

	require.Equal(t, 3, store.count())
	var em, th int
	for _, p := range store.inserted {
		switch p.Categories[0] {
		case "econ.EM":
			em++
		case "econ.TH":
			th++
		}
	}
	assert.Equal(t, 2, em, "dominant category capped at the ceiling")
	assert.Equal(t, 1, th, "sparse category still represented")
}

func TestCrawlerEmitsFinishedOnPanic(t *testing.T) {
	backend := &fakeBackend{name: "arXiv", items: []types.Candidate{crawlCand("a1", types.SourceArxiv)}}
	store := &fakeStore{insertFn: func(*types.Paper) (int64, error) { panic("database handle closed") }}
	rec := &recorder{}
	c := New(types.Config{}, []fetch.Backend{backend}, store, &fakeDownloader{}, rec, nil)

	_, err := c.Start(context.Background(), ModeKeyword, nil)
	require.NoError(t, err)
	awaitDone(t, c)

	assert.Equal(t, StatusIdle, c.Status().Status)
	finished := rec.ofType(EventCrawlFinished)
	require.Len(t, finished, 1)
	assert.Contains(t, finished[0].Message, "failed")
}

func TestCrawlerDoneWhenIdleIsClosed(t *testing.T) {
	c := New(types.Config{}, nil, &fakeStore{}, &fakeDownloader{}, nil, nil)
	select {
	case <-c.Done():
	default:
		t.Fatal("Done must be closed while idle")
	}
}

func TestCrawlerProgressPercentages(t *testing.T) {
	var items []types.Candidate
	for i := 0; i < 4; i++ {
		items = append(items, crawlCand(fmt.Sprintf("a%d", i), types.SourceArxiv))
	}
	backend := &fakeBackend{name: "arXiv", items: items}
	rec := &recorder{}
	c := New(types.Config{}, []fetch.Backend{backend}, &fakeStore{}, &fakeDownloader{}, rec, nil)

	_, err := c.Start(context.Background(), ModeKeyword, nil)
	require.NoError(t, err)
	awaitDone(t, c)

	progress := rec.ofType(EventProgressUpdate)
	require.Len(t, progress, 4)
	want := []int{25, 50, 75, 100}
	for i, evt := range progress {
		assert.Equal(t, want[i], evt.Percent)
	}
}
