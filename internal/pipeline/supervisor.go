package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/calegria/pipesort/internal/channel"
	"github.com/calegria/pipesort/internal/logging"
	"github.com/calegria/pipesort/internal/monitoring"
)

// Options configures a Supervisor.
type Options struct {
	// Workers is the worker pool size; must be >= 1.
	Workers int

	// MaxRecordBytes bounds one record including its newline terminator;
	// <= 0 selects channel.DefaultMaxRecord.
	MaxRecordBytes int

	// ReapTimeout bounds the post-merge wait for each worker to exit; zero
	// waits forever. A worker still running at the deadline is killed and
	// reported as failed.
	ReapTimeout time.Duration

	// WorkerCommand is the argv used to launch one worker process. Empty
	// selects the running executable with the "worker" subcommand.
	WorkerCommand []string

	Logger  *logging.Logger
	Metrics *monitoring.Metrics
}

// Supervisor owns the worker pool's lifetime: it creates every process and
// channel endpoint before any data flows, runs the distributor and merger
// concurrently, and reaps every child once the merge completes.
type Supervisor struct {
	opts    Options
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// New validates the options and creates a Supervisor.
func New(opts Options) (*Supervisor, error) {
	if opts.Workers < 1 {
		return nil, fmt.Errorf("pipeline: workers must be >= 1, got %d", opts.Workers)
	}
	if opts.MaxRecordBytes <= 0 {
		opts.MaxRecordBytes = channel.DefaultMaxRecord
	}
	if len(opts.WorkerCommand) == 0 {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("pipeline: resolve executable: %w", err)
		}
		opts.WorkerCommand = []string{exe, "worker"}
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Supervisor{opts: opts, log: log.Named("supervisor"), metrics: metrics}, nil
}

// Run executes one full distribute-sort-merge cycle: input is consumed
// entirely, the globally sorted stream is written to output, and every
// worker is reaped. The returned Report is non-nil whenever the pool
// started; the error aggregates channel failures and abnormal worker exits.
// Worker failure never aborts the merge (partial results are preferable to
// total failure), but it does surface in the error and the Report.
func (s *Supervisor) Run(ctx context.Context, input io.Reader, output io.Writer) (*Report, error) {
	start := time.Now()
	defer func() {
		s.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	// All-or-nothing pool startup. Every process and both of its channel
	// endpoints must exist before the first input record is read, otherwise
	// a worker can block flushing sorted output while the distributor is
	// still blocked feeding a sibling, and neither side progresses.
	procs := make([]*proc, s.opts.Workers)
	for i := range procs {
		p, err := spawn(i, s.opts.WorkerCommand, s.opts.MaxRecordBytes)
		if err != nil {
			s.teardown(procs[:i])
			return nil, fmt.Errorf("pipeline: start worker %d: %w", i, err)
		}
		procs[i] = p
		s.log.Debug("worker started",
			zap.Int("worker", i),
			zap.Int("pid", p.cmd.Process.Pid),
		)
	}
	s.metrics.WorkersActive.Set(float64(len(procs)))

	// A canceled context kills the pool; the broken pipes then unwind the
	// distributor and merger.
	stopWatch := context.AfterFunc(ctx, func() {
		s.log.Warn("run canceled, killing workers")
		for _, p := range procs {
			p.kill()
		}
	})
	defer stopWatch()

	sinks := make([]channel.LineWriter, len(procs))
	sources := make([]channel.LineReader, len(procs))
	for i, p := range procs {
		sinks[i] = p.in
		sources[i] = p.out
	}

	distributor := NewDistributor(channel.NewReader(input, s.opts.MaxRecordBytes), sinks, s.log, s.metrics)
	merger := NewMerger(sources, channel.NewWriter(output, 0), s.log, s.metrics)

	// Distributor feeds while merger drains. Both must run to completion
	// regardless of the other's error, so no shared cancellation here.
	var g errgroup.Group
	g.Go(distributor.Run)
	g.Go(merger.Run)
	runErr := g.Wait()

	report := s.reap(procs)

	if err := multierr.Append(runErr, report.Err()); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	s.log.Info("run complete",
		zap.Int("workers", len(procs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// reap waits for every worker to exit and records each exit status.
func (s *Supervisor) reap(procs []*proc) *Report {
	report := &Report{Workers: make([]ExitReport, len(procs))}
	for _, p := range procs {
		err := s.wait(p)

		// An abnormal exit is carried by the code, not the wait error.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = nil
		}
		code := -1
		if p.cmd.ProcessState != nil {
			code = p.cmd.ProcessState.ExitCode()
		}

		report.Workers[p.index] = ExitReport{
			Index:    p.index,
			PID:      p.cmd.Process.Pid,
			ExitCode: code,
			Err:      err,
		}
		s.metrics.WorkersActive.Dec()

		if report.Workers[p.index].Failed() {
			s.metrics.WorkerFailures.Inc()
			s.log.Warn("worker exited abnormally",
				zap.Int("worker", p.index),
				zap.Int("pid", p.cmd.Process.Pid),
				zap.Int("exit_code", code),
				zap.Error(err),
			)
		} else {
			s.log.Debug("worker exited",
				zap.Int("worker", p.index),
				zap.Int("pid", p.cmd.Process.Pid),
			)
		}
	}
	return report
}

// wait reaps one worker, killing it if it outlives the reap timeout.
func (s *Supervisor) wait(p *proc) error {
	if s.opts.ReapTimeout <= 0 {
		return p.cmd.Wait()
	}
	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(s.opts.ReapTimeout):
		p.kill()
		<-done
		return fmt.Errorf("pipeline: worker %d still running after %s, killed", p.index, s.opts.ReapTimeout)
	}
}

// teardown kills and reaps the workers already started when pool creation
// fails partway, keeping startup all-or-nothing.
func (s *Supervisor) teardown(procs []*proc) {
	for _, p := range procs {
		p.kill()
		p.cmd.Wait()
	}
}
