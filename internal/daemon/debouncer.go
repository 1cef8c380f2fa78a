package daemon

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Debouncer coalesces bursts of change notifications into a single call carrying every
// path reported since the previous call. A call fires once no notification arrived for
// the quiet window, or once maxDelay passed since the first pending notification.
type Debouncer struct {
	quiet    time.Duration
	maxDelay time.Duration
	notify   chan string

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewDebouncer returns a Debouncer. A zero maxDelay means ten quiet windows.
func NewDebouncer(quiet, maxDelay time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 10 * quiet
	}
	return &Debouncer{
		quiet:    quiet,
		maxDelay: maxDelay,
		notify:   make(chan string, 256),
		pending:  map[string]struct{}{},
	}
}

// Trigger records a changed path. It never blocks; when the buffer is full the path is
// still recorded and the next notification flushes it.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	d.pending[path] = struct{}{}
	d.mu.Unlock()
	select {
	case d.notify <- path:
	default:
	}
}

// Run calls fire with coalesced paths until ctx is done. fire runs on the Run goroutine,
// so calls never overlap.
func (d *Debouncer) Run(ctx context.Context, fire func(ctx context.Context, paths []string)) {
	var (
		quietC <-chan time.Time
		maxC   <-chan time.Time
		quietT *time.Timer
		maxT   *time.Timer
	)
	stop := func() {
		if quietT != nil {
			quietT.Stop()
		}
		if maxT != nil {
			maxT.Stop()
		}
		quietC, maxC = nil, nil
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.notify:
			if quietT != nil {
				quietT.Stop()
			}
			quietT = time.NewTimer(d.quiet)
			quietC = quietT.C
			if maxC == nil {
				maxT = time.NewTimer(d.maxDelay)
				maxC = maxT.C
			}
		case <-quietC:
			stop()
			d.flush(ctx, fire)
		case <-maxC:
			stop()
			d.flush(ctx, fire)
		}
	}
}

func (d *Debouncer) flush(ctx context.Context, fire func(context.Context, []string)) {
	d.mu.Lock()
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = map[string]struct{}{}
	d.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	fire(ctx, paths)
}
