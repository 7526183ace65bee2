package main

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"

	"github.com/calegria/pipesort/internal/channel"
	"github.com/calegria/pipesort/internal/sorter"
)

// workerEnv is the contract between the supervisor and a worker process.
type workerEnv struct {
	Index     int `envconfig:"PIPESORT_WORKER_INDEX" default:"0"`
	MaxRecord int `envconfig:"PIPESORT_MAX_RECORD" default:"4096"`
}

// runWorker is the child-process entry point: read every record from stdin,
// sort the batch, flush it to stdout. The parent closing stdin is the only
// signal to start sorting.
func runWorker() int {
	var env workerEnv
	if err := envconfig.Process("", &env); err != nil {
		fmt.Fprintf(os.Stderr, "pipesort worker: %v\n", err)
		return 1
	}

	in := channel.NewReader(os.Stdin, env.MaxRecord)
	out := channel.NewWriter(os.Stdout, env.MaxRecord)
	if err := sorter.Run(in, out); err != nil {
		fmt.Fprintf(os.Stderr, "pipesort worker %d: %v\n", env.Index, err)
		return 1
	}
	return 0
}
