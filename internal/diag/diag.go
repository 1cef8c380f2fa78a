// Package diag collects recoverable conversion warnings.
//
// Warnings never interrupt a conversion. Each one is logged when it is reported and kept
// so that batch drivers can include it in their summary.
package diag

import (
	"fmt"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/mdx2md/internal/logfields"
)

// Kind classifies a recoverable condition.
type Kind string

const (
	KindAssetMissing        Kind = "asset_missing"
	KindMalformedTag        Kind = "malformed_tag"
	KindUnresolvedReference Kind = "unresolved_reference"
	KindUnknownGlobalKey    Kind = "unknown_global_key"
	KindBrokenLink          Kind = "broken_link"
)

// Warning is a single recoverable problem found while converting a document.
type Warning struct {
	Kind    Kind
	Path    string // Source file the warning refers to (may be a fragment)
	Stage   string
	Message string
}

func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Message, w.Path)
}

// Sink receives warnings. Resolvers accept a Sink so they can be used without a Collector.
type Sink interface {
	Warn(w Warning)
}

// Discard is a Sink that drops every warning.
var Discard Sink = discard{}

type discard struct{}

func (discard) Warn(Warning) {}

// Collector is a Sink that logs and stores warnings.
type Collector struct {
	mu       sync.Mutex
	logger   *slog.Logger
	warnings []Warning
}

// NewCollector creates a Collector logging through logger (slog.Default when nil).
func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

// Warn records a warning.
func (c *Collector) Warn(w Warning) {
	c.mu.Lock()
	c.warnings = append(c.warnings, w)
	c.mu.Unlock()

	attrs := []any{logfields.Kind(string(w.Kind))}
	if w.Path != "" {
		attrs = append(attrs, logfields.Path(w.Path))
	}
	if w.Stage != "" {
		attrs = append(attrs, logfields.Stage(w.Stage))
	}
	c.logger.Warn(w.Message, attrs...)
}

// Warnings returns a copy of the recorded warnings in report order.
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Count returns the number of recorded warnings.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.warnings)
}

// CountByKind returns the number of warnings per kind.
func (c *Collector) CountByKind() map[Kind]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Kind]int)
	for _, w := range c.warnings {
		out[w.Kind]++
	}
	return out
}

// Scoped returns a Sink that fills in Stage and Path on warnings that leave them empty.
func Scoped(sink Sink, stage, path string) Sink {
	if sink == nil {
		sink = Discard
	}
	return scoped{sink: sink, stage: stage, path: path}
}

type scoped struct {
	sink  Sink
	stage string
	path  string
}

func (s scoped) Warn(w Warning) {
	if w.Stage == "" {
		w.Stage = s.stage
	}
	if w.Path == "" {
		w.Path = s.path
	}
	s.sink.Warn(w)
}
