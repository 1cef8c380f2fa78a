package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDebouncer(50*time.Millisecond, time.Second)
	var (
		mu    sync.Mutex
		calls [][]string
	)
	go d.Run(ctx, func(_ context.Context, paths []string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, paths)
	})

	d.Trigger("b.mdx")
	d.Trigger("a.mdx")
	d.Trigger("b.mdx")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"a.mdx", "b.mdx"}, calls[0])
}

func TestDebouncer_MaxDelayBoundsContinuousTriggers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDebouncer(100*time.Millisecond, 200*time.Millisecond)
	var fired atomic.Int32
	go d.Run(ctx, func(context.Context, []string) { fired.Add(1) })

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		d.Trigger("a.mdx")
		time.Sleep(20 * time.Millisecond)
	}
	assert.GreaterOrEqual(t, fired.Load(), int32(1))
}

func TestNew_RequiresTrigger(t *testing.T) {
	noop := func(context.Context, Trigger, []string) error { return nil }

	_, err := New(Options{}, noop)
	require.Error(t, err)
	_, err = New(Options{Watch: true}, noop)
	require.Error(t, err)
	_, err = New(Options{Interval: time.Second}, nil)
	require.Error(t, err)
}

func TestDaemon_IntervalRunsAndStops(t *testing.T) {
	var runs atomic.Int32
	d, err := New(Options{Interval: 50 * time.Millisecond, RunOnStart: true}, func(_ context.Context, trigger Trigger, _ []string) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 3*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("daemon did not stop")
	}

	n, last, runErr := d.Status()
	assert.GreaterOrEqual(t, n, 3)
	assert.False(t, last.IsZero())
	assert.NoError(t, runErr)
}

func TestDaemon_WatchTriggersOnChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "video"), 0o750))

	changed := make(chan []string, 4)
	d, err := New(Options{DocsRoot: root, Watch: true, Debounce: 50 * time.Millisecond},
		func(_ context.Context, trigger Trigger, paths []string) error {
			if trigger == TriggerWatch {
				changed <- paths
			}
			return nil
		})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	// Give the watcher time to register the tree.
	time.Sleep(200 * time.Millisecond)
	target := filepath.Join(root, "video", "page.mdx")
	require.NoError(t, os.WriteFile(target, []byte("# Page\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "video", "notes.txt"), []byte("x"), 0o600))

	select {
	case paths := <-changed:
		assert.Equal(t, []string{target}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("no watch-triggered export")
	}
}

func TestScheduler_RejectsMissingSchedule(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	s.Start()
	defer func() { _ = s.Stop() }()

	_, err = s.ScheduleExport(context.Background(), "", 0, func(context.Context) {})
	require.Error(t, err)

	id, err := s.ScheduleExport(context.Background(), "0 */4 * * *", 0, func(context.Context) {})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
