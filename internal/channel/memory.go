package channel

import (
	"io"
	"strings"
	"sync"
)

// Memory is an in-process line channel. It implements both LineReader and
// LineWriter and mirrors the blocking semantics of a real pipe: ReadLine
// blocks until a record arrives or the writer closes. It is the seam that
// lets the distributor, sorter, and merger be exercised without spawning
// worker processes.
type Memory struct {
	mu     sync.Mutex
	cond   *sync.Cond
	lines  []string
	closed bool
}

// NewMemory creates an empty in-process channel.
func NewMemory() *Memory {
	m := &Memory{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// WriteLine appends one record.
func (m *Memory) WriteLine(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrChannelClosed
	}
	m.lines = append(m.lines, strings.TrimSuffix(line, "\n"))
	m.cond.Signal()
	return nil
}

// ReadLine blocks until a record is available or the channel is closed,
// returning io.EOF once closed and drained.
func (m *Memory) ReadLine() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.lines) == 0 && !m.closed {
		m.cond.Wait()
	}
	if len(m.lines) == 0 {
		return "", io.EOF
	}
	line := m.lines[0]
	m.lines = m.lines[1:]
	return line, nil
}

// Close marks end-of-stream and wakes blocked readers. Idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cond.Broadcast()
	return nil
}

// Len reports the number of buffered, unread records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lines)
}
