// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/probe/pkg/analyzer"
	"github.com/panbanda/probe/pkg/source"
)

// ErrFileTooLarge is recorded for files over the size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Messages returns "path: error" for every collected error.
func (e *ProcessingErrors) Messages() []string {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.Errors))
	for i, pe := range e.Errors {
		out[i] = pe.Error()
	}
	return out
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap returns the collected errors for errors.Is and errors.As.
func (e *ProcessingErrors) Unwrap() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		out[i] = pe.Err
	}
	return out
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
const DefaultWorkerMultiplier = 2

// Workers returns n, or 2x NumCPU when n is not positive.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// Options bounds a batch.
type Options struct {
	Workers     int   // 0 means 2x NumCPU
	MaxFileSize int64 // bytes, 0 disables the limit
}

// MapUnits loads each file from src and calls fn with the resulting unit.
// Results keep input order; a failed file leaves the zero value at its index
// and an entry in the returned errors, which is nil when nothing failed.
// Progress is reported through the tracker carried by ctx, if any.
func MapUnits[T any](
	ctx context.Context,
	files []string,
	src source.ContentSource,
	opts Options,
	fn func(context.Context, *source.Unit) (T, error),
) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(files))
	}

	results := make([]T, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(Workers(opts.Workers)).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			result, err := processOne(ctx, src, path, opts.MaxFileSize, fn)
			if err != nil {
				errs.Add(path, err)
				if tracker != nil {
					tracker.Fail(path)
				}
				return nil // Don't stop pool on individual file errors
			}
			results[i] = result
			if tracker != nil {
				tracker.Done(path)
			}
			return nil
		})
	}
	_ = p.Wait()

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

func processOne[T any](
	ctx context.Context,
	src source.ContentSource,
	path string,
	maxSize int64,
	fn func(context.Context, *source.Unit) (T, error),
) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	content, err := src.Read(path)
	if err != nil {
		return zero, err
	}
	if maxSize > 0 && int64(len(content)) > maxSize {
		return zero, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(content))
	}
	return fn(ctx, source.New(string(content), path))
}
