// Package events provides an explicit, passed-in observability sink so the
// core packages carry no hidden process-wide state.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
)

// Emitter publishes typed events to a structured log sink and fans them
// out to local in-process subscribers.
type Emitter struct {
	source string
	logger *slog.Logger

	subMu       sync.RWMutex
	subscribers map[string]chan Envelope
}

// NewEmitter creates an emitter for the given source name. A nil logger
// falls back to slog.Default.
func NewEmitter(source string, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		source:      source,
		logger:      logger,
		subscribers: make(map[string]chan Envelope),
	}
}

// Emit publishes a typed event. A nil Emitter discards events, so callers
// never have to guard their instrumentation.
func (e *Emitter) Emit(ctx context.Context, eventType EventType, jobID string, data interface{}) error {
	if e == nil {
		return nil
	}

	envelope := Envelope{
		ID:        xid.New().String(),
		Type:      eventType,
		Source:    e.source,
		JobID:     jobID,
		Timestamp: time.Now().UTC(),
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	envelope.Data = raw

	// Fan out to local subscribers (non-blocking).
	e.subMu.RLock()
	for id, ch := range e.subscribers {
		select {
		case ch <- envelope:
		default:
			e.logger.WarnContext(ctx, "event dropped: subscriber buffer full",
				slog.String("subscriber", id), slog.String("event_type", string(eventType)))
		}
	}
	e.subMu.RUnlock()

	e.logger.InfoContext(ctx, string(eventType),
		slog.String("event_id", envelope.ID),
		slog.String("source", e.source),
		slog.String("job_id", jobID),
		slog.String("data", string(raw)),
	)
	return nil
}

// Subscribe creates a local in-process subscription for events.
// The caller must call Unsubscribe with the same id to clean up.
func (e *Emitter) Subscribe(id string, bufSize int) <-chan Envelope {
	if bufSize <= 0 {
		bufSize = 64
	}
	ch := make(chan Envelope, bufSize)
	e.subMu.Lock()
	e.subscribers[id] = ch
	e.subMu.Unlock()
	return ch
}

// Unsubscribe removes a local subscription and closes its channel.
func (e *Emitter) Unsubscribe(id string) {
	e.subMu.Lock()
	if ch, ok := e.subscribers[id]; ok {
		close(ch)
		delete(e.subscribers, id)
	}
	e.subMu.Unlock()
}
