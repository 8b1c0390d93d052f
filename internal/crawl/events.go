// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

// EventType names a crawl lifecycle or progress milestone.
type EventType string

// Event types emitted during a run, in lifecycle order: status updates and
// per-source progress while fetching and downloading, a paper_downloaded
// per persisted record, and exactly one crawl_finished per run.
const (
	EventStatusUpdate     EventType = "status_update"
	EventProgressUpdate   EventType = "progress_update"
	EventDownloadProgress EventType = "download_progress"
	EventPaperDownloaded  EventType = "paper_downloaded"
	EventCrawlFinished    EventType = "crawl_finished"
)

// Event captures a single crawl milestone. Delivery is fire-and-forget,
// at most once per occurrence.
type Event struct {
	// RunID identifies the run the event belongs to.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Type denotes which milestone occurred.
	Type EventType
	// Source optionally scopes progress events to a source name.
	Source string
	// Percent carries listing or download progress (0-100).
	Percent int
	// Message is the human-readable status text.
	Message string
	// Item identifies the paper a download_progress event refers to.
	Item string
	// Paper is the persisted record attached to paper_downloaded events.
	Paper *types.Paper
}

// Emitter consumes crawl events. Implementations must not block; the run
// loop calls them inline.
type Emitter interface {
	Emit(evt Event)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(Event)

// Emit calls f(evt).
func (f EmitterFunc) Emit(evt Event) { f(evt) }

// NopEmitter discards all events.
type NopEmitter struct{}

// Emit does nothing.
func (NopEmitter) Emit(Event) {}

// LogEmitter writes events to a zap logger, one line per event.
type LogEmitter struct {
	Logger *zap.Logger
}

// Emit logs the event.
func (e *LogEmitter) Emit(evt Event) {
	if e.Logger == nil {
		return
	}
	fields := []zap.Field{zap.String("run_id", evt.RunID.String())}
	if evt.Source != "" {
		fields = append(fields, zap.String("source", evt.Source))
	}
	switch evt.Type {
	case EventDownloadProgress:
		e.Logger.Debug(evt.Item, append(fields, zap.Int("percent", evt.Percent))...)
	case EventProgressUpdate:
		e.Logger.Info(evt.Message, append(fields, zap.Int("percent", evt.Percent))...)
	case EventPaperDownloaded:
		title := ""
		if evt.Paper != nil {
			title = evt.Paper.Title
		}
		e.Logger.Info("paper downloaded", append(fields, zap.String("title", title))...)
	default:
		e.Logger.Info(evt.Message, fields...)
	}
}
