package events

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of event flowing through the system.
type EventType string

const (
	JobStateChanged      EventType = "job.state_changed"
	BackendSelected      EventType = "backend.selected"
	GenerationStarted    EventType = "generation.started"
	GenerationCompleted  EventType = "generation.completed"
	ArtifactRelocated    EventType = "artifact.relocated"
	ScratchAcquired      EventType = "scratch.acquired"
	ScratchReleased      EventType = "scratch.released"
	ScratchReleaseFailed EventType = "scratch.release_failed"
	JobFailed            EventType = "job.failed"
)

// Envelope is the standard wrapper for emitted events.
type Envelope struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Source    string            `json:"source"`
	JobID     string            `json:"job_id"`
	Timestamp time.Time         `json:"timestamp"`
	Data      json.RawMessage   `json:"data"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// JobStateChangedData is the payload for job.state_changed events.
type JobStateChangedData struct {
	FromState string `json:"from_state"`
	ToState   string `json:"to_state"`
}

// BackendSelectedData is the payload for backend.selected events.
type BackendSelectedData struct {
	Backend    string `json:"backend"`
	Capability string `json:"capability"`
}

// GenerationData is the payload for generation.started and
// generation.completed events.
type GenerationData struct {
	Backend    string `json:"backend"`
	TextLength int    `json:"text_length"`
	Voice      string `json:"voice,omitempty"`
}

// ArtifactRelocatedData is the payload for artifact.relocated events.
type ArtifactRelocatedData struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	SizeBytes   int64  `json:"size_bytes"`
}

// ScratchData is the payload for the scratch.* events.
type ScratchData struct {
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
}

// JobFailedData is the payload for job.failed events.
type JobFailedData struct {
	State string `json:"state"`
	Error string `json:"error"`
}
