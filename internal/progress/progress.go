package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/panbanda/probe/pkg/analyzer"
)

// Tracker wraps a progress bar for file processing.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
}

// NewTracker creates a progress bar on stderr with the given label and total count.
func NewTracker(label string, total int) *Tracker {
	return NewTrackerWriter(os.Stderr, label, total)
}

// NewTrackerWriter is NewTracker with an explicit destination.
func NewTrackerWriter(w io.Writer, label string, total int) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, out: w}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	t.bar.Add(1)
}

// Current returns how many ticks were recorded.
func (t *Tracker) Current() int64 {
	return t.bar.State().CurrentNum
}

// Callback returns an analyzer.ProgressFunc that ticks once per finished
// unit, so the bar can follow a batch through analyzer.WithTracker.
func (t *Tracker) Callback() analyzer.ProgressFunc {
	return func(analyzer.Progress) {
		t.Tick()
	}
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	t.bar.Finish()
	t.bar.Clear()
}

// FinishFailures clears the bar and prints how many units failed.
func (t *Tracker) FinishFailures(failed int) {
	t.bar.Finish()
	t.bar.Clear()
	if failed > 0 {
		fmt.Fprintf(t.out, "  %s: %d failed\n", t.label, failed)
	}
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	t.bar.Finish()
	t.bar.Clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
