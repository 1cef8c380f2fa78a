// Package events publishes export notifications.
//
// Consumers (search indexers, CDN purgers) subscribe to `<subject>.document` for every
// written document and `<subject>.run` for the end of each export run.
package events

import (
	"context"
	"time"
)

// DocumentEvent announces a document written by an export.
type DocumentEvent struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	Output      string    `json:"output"`
	Platform    string    `json:"platform"`
	Product     string    `json:"product"`
	Fingerprint string    `json:"fingerprint"`
	Warnings    int       `json:"warnings"`
	Timestamp   time.Time `json:"timestamp"`
}

// RunEvent summarizes a finished export run.
type RunEvent struct {
	RunID      string        `json:"run_id"`
	Commit     string        `json:"commit,omitempty"`
	Converted  int           `json:"converted"`
	Unchanged  int           `json:"unchanged"`
	Failed     int           `json:"failed"`
	Warnings   int           `json:"warnings"`
	Duration   time.Duration `json:"duration_ns"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Publisher sends export events.
type Publisher interface {
	PublishDocument(ctx context.Context, ev DocumentEvent) error
	PublishRun(ctx context.Context, ev RunEvent) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishDocument(context.Context, DocumentEvent) error { return nil }
func (NoopPublisher) PublishRun(context.Context, RunEvent) error           { return nil }
func (NoopPublisher) Close() error                                         { return nil }
