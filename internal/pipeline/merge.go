package pipeline

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/calegria/pipesort/internal/channel"
	"github.com/calegria/pipesort/internal/logging"
	"github.com/calegria/pipesort/internal/monitoring"
)

// slotState tracks one source through the merge:
// pending first read → has head (refilled in place) → exhausted (terminal).
type slotState int

const (
	slotPendingFirstRead slotState = iota
	slotHasHead
	slotExhausted
)

// Merger performs a streaming k-way merge over the worker outbound channels.
// Each source is individually sorted (the worker contract), so the smallest
// unconsumed record globally is always among the current heads; the merger
// buffers exactly one head per live source and never more.
type Merger struct {
	sources []channel.LineReader
	dst     channel.LineWriter
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewMerger creates a merger over the given sorted sources, writing the
// merged stream to dst. Logger and metrics may be nil.
func NewMerger(sources []channel.LineReader, dst channel.LineWriter, log *logging.Logger, metrics *monitoring.Metrics) *Merger {
	if log == nil {
		log = logging.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Merger{sources: sources, dst: dst, log: log.Named("merger"), metrics: metrics}
}

// Run merges until every source is exhausted, then closes dst. A source that
// fails mid-stream is treated as exhausted so the merge finishes with the
// survivors; the error is still reported.
func (m *Merger) Run() error {
	k := len(m.sources)
	heads := make([]string, k)
	state := make([]slotState, k)
	var errs error

	refill := func(i int) {
		line, err := m.sources[i].ReadLine()
		switch {
		case err == nil:
			heads[i] = line
			state[i] = slotHasHead
		case errors.Is(err, io.EOF):
			state[i] = slotExhausted
		default:
			state[i] = slotExhausted
			errs = multierr.Append(errs, fmt.Errorf("merge: worker %d: %w", i, err))
			m.log.Warn("worker stream failed, treating as exhausted",
				zap.Int("worker", i),
				zap.Error(err),
			)
		}
	}

	// Preload one head per source.
	for i := 0; i < k; i++ {
		refill(i)
	}

	for {
		min := -1
		for i := 0; i < k; i++ {
			if state[i] != slotHasHead {
				continue
			}
			// Strict < keeps the lowest-index head on ties.
			if min < 0 || heads[i] < heads[min] {
				min = i
			}
		}
		if min < 0 {
			break
		}
		if err := m.dst.WriteLine(heads[min]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("merge: write output: %w", err))
			// Workers block flushing into pipes nobody reads; drain every
			// remaining source to end-of-stream so they can exit and be
			// reaped.
			for i := 0; i < k; i++ {
				for state[i] == slotHasHead {
					refill(i)
				}
			}
			break
		}
		m.metrics.LinesMerged.Inc()
		refill(min)
	}

	if err := m.dst.Close(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("merge: close output: %w", err))
	}
	return errs
}
