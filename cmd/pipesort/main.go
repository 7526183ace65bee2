package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/calegria/pipesort/internal/config"
	"github.com/calegria/pipesort/internal/logging"
	"github.com/calegria/pipesort/internal/monitoring"
	"github.com/calegria/pipesort/internal/pipeline"
)

func main() {
	// Hidden child-process mode; the supervisor re-execs this binary as
	// "pipesort worker" for every pool slot.
	if len(os.Args) > 1 && os.Args[1] == "worker" {
		os.Exit(runWorker())
	}

	workers := flag.Int("workers", 0, "worker process pool size (default 5)")
	maxRecord := flag.Int("max-record", 0, "maximum record length in bytes, newline included (default 4096)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	metricsAddr := flag.String("metrics-addr", "", "listen address for Prometheus /metrics (disabled when empty)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *workers > 0 {
		cfg.Pipeline.Workers = *workers
	}
	if *maxRecord > 0 {
		cfg.Pipeline.MaxRecordBytes = *maxRecord
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "pipesort: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipesort: logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.With(zap.String("run_id", uuid.NewString()))

	metrics := monitoring.NewMetrics()
	if cfg.Metrics.Addr != "" {
		go func() {
			if serveErr := http.ListenAndServe(cfg.Metrics.Addr, metrics.Handler()); serveErr != nil {
				log.Warn("metrics endpoint failed", zap.Error(serveErr))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input, err := inputStream(os.Stdin)
	if err != nil {
		log.Error("input setup failed", zap.Error(err))
		os.Exit(1)
	}

	supervisor, err := pipeline.New(pipeline.Options{
		Workers:        cfg.Pipeline.Workers,
		MaxRecordBytes: cfg.Pipeline.MaxRecordBytes,
		ReapTimeout:    cfg.Pipeline.ReapTimeout,
		Logger:         log,
		Metrics:        metrics,
	})
	if err != nil {
		log.Error("pipeline setup failed", zap.Error(err))
		os.Exit(1)
	}

	report, err := supervisor.Run(ctx, input, os.Stdout)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if report != nil {
			fields = append(fields, zap.Ints("failed_workers", report.Failed()))
		}
		log.Error("sort failed", fields...)
		os.Exit(1)
	}
	log.Info("sort complete", zap.Int("workers", len(report.Workers)))
}

// inputStream sniffs the input for the gzip magic and decompresses
// transparently.
func inputStream(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != 0x1f || magic[1] != 0x8b {
		// Not gzip (or too short to be); hand the stream through as-is.
		return br, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("gzip input: %w", err)
	}
	return zr, nil
}
