package pipeline

import (
	"fmt"

	"go.uber.org/multierr"
)

// ExitReport records the fate of one reaped worker process.
type ExitReport struct {
	Index    int
	PID      int
	ExitCode int
	Err      error
}

// Failed reports whether the worker exited abnormally.
func (r ExitReport) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// Report aggregates the pool's exit statuses after reaping.
type Report struct {
	Workers []ExitReport
}

// Failed returns the indices of workers that exited abnormally.
func (r *Report) Failed() []int {
	var failed []int
	for _, w := range r.Workers {
		if w.Failed() {
			failed = append(failed, w.Index)
		}
	}
	return failed
}

// Err folds per-worker failures into a single error, or nil when every
// worker exited normally.
func (r *Report) Err() error {
	var errs error
	for _, w := range r.Workers {
		if !w.Failed() {
			continue
		}
		if w.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("worker %d (pid %d): %w", w.Index, w.PID, w.Err))
		} else {
			errs = multierr.Append(errs, fmt.Errorf("worker %d (pid %d): exit status %d", w.Index, w.PID, w.ExitCode))
		}
	}
	return errs
}
