// Package sorter implements the worker-side transform of the sort pipeline:
// buffer every inbound record, sort the batch, flush it sorted.
package sorter

import (
	"fmt"
	"io"
	"sort"

	"github.com/calegria/pipesort/internal/channel"
)

// Run drains in until end-of-stream, sorts the accumulated records bytewise
// (case-sensitive, a strict prefix sorts before its extension), writes them
// to out in order, and closes out. Nothing is emitted before the inbound
// stream is fully consumed; that is what makes each worker's outbound stream
// internally sorted, which the merger depends on.
func Run(in channel.LineReader, out channel.LineWriter) error {
	var lines []string
	for {
		line, err := in.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			out.Close()
			return fmt.Errorf("sorter: read: %w", err)
		}
		lines = append(lines, line)
	}

	sort.Strings(lines)

	for _, line := range lines {
		if err := out.WriteLine(line); err != nil {
			return fmt.Errorf("sorter: write: %w", err)
		}
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("sorter: close: %w", err)
	}
	return nil
}
