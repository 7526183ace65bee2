package channel

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
	"syscall"
)

// Reader reads newline-terminated records from a byte stream, typically the
// parent's end of a worker's stdout pipe.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer

	mu     sync.Mutex
	closed bool
}

// NewReader wraps r in a buffered line reader. Records longer than maxRecord
// bytes (newline included) fail the read with ErrRecordTooLong. maxRecord <= 0
// selects DefaultMaxRecord.
func NewReader(r io.Reader, maxRecord int) *Reader {
	if maxRecord <= 0 {
		maxRecord = DefaultMaxRecord
	}
	scanner := bufio.NewScanner(r)
	// Scanner tokens exclude the newline, so the token bound is one under
	// the record bound.
	scanner.Buffer(make([]byte, 0, maxRecord), maxRecord-1)
	closer, _ := r.(io.Closer)
	return &Reader{scanner: scanner, closer: closer}
}

// ReadLine returns the next record, or io.EOF at end-of-stream.
func (r *Reader) ReadLine() (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return "", ErrRecordTooLong
		}
		return "", err
	}
	return "", io.EOF
}

// Close releases the underlying stream, if it is closable.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.closer == nil {
		r.closed = true
		return nil
	}
	r.closed = true
	return r.closer.Close()
}

// Writer writes newline-terminated records to a byte stream, typically the
// parent's end of a worker's stdin pipe.
type Writer struct {
	mu        sync.Mutex
	bw        *bufio.Writer
	closer    io.Closer
	maxRecord int
	closed    bool
}

// NewWriter wraps w in a buffered line writer. Records longer than maxRecord
// bytes (newline included) are rejected with ErrRecordTooLong; maxRecord <= 0
// disables the bound on the write side.
func NewWriter(w io.Writer, maxRecord int) *Writer {
	closer, _ := w.(io.Closer)
	return &Writer{bw: bufio.NewWriter(w), closer: closer, maxRecord: maxRecord}
}

// WriteLine writes one record, appending the terminator if absent.
func (w *Writer) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrChannelClosed
	}
	n := len(line)
	if !strings.HasSuffix(line, "\n") {
		n++
	}
	if w.maxRecord > 0 && n > w.maxRecord {
		return ErrRecordTooLong
	}
	if _, err := w.bw.WriteString(line); err != nil {
		return mapWriteErr(err)
	}
	if !strings.HasSuffix(line, "\n") {
		if err := w.bw.WriteByte('\n'); err != nil {
			return mapWriteErr(err)
		}
	}
	return nil
}

// Close flushes buffered records and closes the underlying stream, signaling
// end-of-stream to the reader. Idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	flushErr := mapWriteErr(w.bw.Flush())
	if w.closer != nil {
		if err := w.closer.Close(); err != nil && flushErr == nil {
			flushErr = err
		}
	}
	return flushErr
}

// mapWriteErr folds broken-pipe conditions into ErrChannelClosed so callers
// see one error regardless of the underlying transport.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, syscall.EPIPE) || errors.Is(err, io.EOF) {
		return ErrChannelClosed
	}
	return err
}
