package pipeline

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/calegria/pipesort/internal/channel"
)

// Environment variables passed to every worker process.
const (
	EnvWorkerIndex = "PIPESORT_WORKER_INDEX"
	EnvMaxRecord   = "PIPESORT_MAX_RECORD"
)

// proc is one worker process together with the two channel endpoints the
// parent holds: the inbound write end (owned by the distributor) and the
// outbound read end (owned by the merger).
type proc struct {
	index int
	cmd   *exec.Cmd
	in    *channel.Writer
	out   *channel.Reader
}

// spawn launches one worker process with both pipes wired. The worker reads
// records on stdin, sorts them once stdin closes, and flushes the sorted
// batch to stdout; stderr passes through to the parent's stderr.
func spawn(index int, argv []string, maxRecord int) (*proc, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=%d", EnvWorkerIndex, index),
		fmt.Sprintf("%s=%d", EnvMaxRecord, maxRecord),
	)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	return &proc{
		index: index,
		cmd:   cmd,
		in:    channel.NewWriter(stdin, maxRecord),
		out:   channel.NewReader(stdout, maxRecord),
	}, nil
}

// kill forcibly terminates the worker process if it is still running.
func (p *proc) kill() {
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
}
