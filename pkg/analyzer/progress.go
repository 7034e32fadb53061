package analyzer

import (
	"context"
	"sync/atomic"
)

// Progress is a snapshot of a batch run, passed to the tracker callback
// after each unit finishes.
type Progress struct {
	Done   int    // Units finished, including failures
	Failed int    // Units that could not be read or analyzed
	Total  int    // Units expected, 0 when unknown
	File   string // The unit that just finished
}

// ProgressFunc is called to report batch progress.
type ProgressFunc func(Progress)

// Tracker counts finished units across a batch.
// It is safe for concurrent use from multiple goroutines.
type Tracker struct {
	total    atomic.Int64
	done     atomic.Int64
	failed   atomic.Int64
	callback ProgressFunc
}

// NewTracker creates a tracker that reports to callback, which may be nil.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Add increases the expected unit count by n.
func (t *Tracker) Add(n int) {
	t.total.Add(int64(n))
}

// Done marks file as analyzed.
func (t *Tracker) Done(file string) {
	t.report(file, t.done.Add(1), t.failed.Load())
}

// Fail marks file as finished without a result.
func (t *Tracker) Fail(file string) {
	failed := t.failed.Add(1)
	t.report(file, t.done.Add(1), failed)
}

func (t *Tracker) report(file string, done, failed int64) {
	if t.callback == nil {
		return
	}
	t.callback(Progress{
		Done:   int(done),
		Failed: int(failed),
		Total:  int(t.total.Load()),
		File:   file,
	})
}

// Snapshot returns the current counts without a file.
func (t *Tracker) Snapshot() Progress {
	return Progress{
		Done:   int(t.done.Load()),
		Failed: int(t.failed.Load()),
		Total:  int(t.total.Load()),
	}
}

type trackerKey struct{}

// WithTracker returns a context that carries a progress tracker.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext extracts the progress tracker from the context.
// Returns nil if no tracker was set.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
