package pipeline

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/calegria/pipesort/internal/channel"
	"github.com/calegria/pipesort/internal/logging"
	"github.com/calegria/pipesort/internal/monitoring"
)

// Distributor reads the input stream and deals records to the worker inbound
// channels in round-robin order. Closing every sink at input end-of-stream is
// the only signal telling the workers to start sorting and flushing.
type Distributor struct {
	src     channel.LineReader
	sinks   []channel.LineWriter
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewDistributor creates a distributor over the given input and worker
// inbound channels. Logger and metrics may be nil.
func NewDistributor(src channel.LineReader, sinks []channel.LineWriter, log *logging.Logger, metrics *monitoring.Metrics) *Distributor {
	if log == nil {
		log = logging.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Distributor{src: src, sinks: sinks, log: log.Named("distributor"), metrics: metrics}
}

// Run distributes until input end-of-stream, then closes every sink. A sink
// whose peer has gone away is marked dead and skipped from then on; its
// record is dealt to the next live worker so surviving workers still receive
// everything read after the failure. Run returns the accumulated channel
// errors, or nil for a clean pass.
func (d *Distributor) Run() error {
	var errs error
	dead := make([]bool, len(d.sinks))
	live := len(d.sinks)
	n := 0

read:
	for live > 0 {
		line, err := d.src.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, channel.ErrRecordTooLong) {
				d.metrics.RecordsRejected.Inc()
			}
			errs = multierr.Append(errs, fmt.Errorf("distribute: read input: %w", err))
			break
		}
		d.metrics.LinesRead.Inc()

		for tries := 0; tries < len(d.sinks); tries++ {
			idx := n
			n = (n + 1) % len(d.sinks)
			if dead[idx] {
				continue
			}
			werr := d.sinks[idx].WriteLine(line)
			if werr == nil {
				d.metrics.LinesDistributed.WithLabelValues(strconv.Itoa(idx)).Inc()
				continue read
			}
			dead[idx] = true
			live--
			errs = multierr.Append(errs, fmt.Errorf("distribute: worker %d: %w", idx, werr))
			d.log.Warn("worker channel lost, redistributing",
				zap.Int("worker", idx),
				zap.Error(werr),
			)
		}
		errs = multierr.Append(errs, errors.New("distribute: no live workers remain"))
		break
	}

	for i, sink := range d.sinks {
		if cerr := sink.Close(); cerr != nil && !errors.Is(cerr, channel.ErrChannelClosed) {
			errs = multierr.Append(errs, fmt.Errorf("distribute: close worker %d: %w", i, cerr))
		}
	}
	return errs
}
