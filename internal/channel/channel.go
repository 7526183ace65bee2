package channel

import "errors"

// DefaultMaxRecord is the maximum record length in bytes, newline included.
const DefaultMaxRecord = 4096

var (
	// ErrChannelClosed is returned by WriteLine when the channel has been
	// closed locally or the peer has closed its read end.
	ErrChannelClosed = errors.New("channel: closed")

	// ErrRecordTooLong is returned when a record exceeds the channel's
	// maximum record length.
	ErrRecordTooLong = errors.New("channel: record too long")
)

// LineReader is the read end of a line channel.
type LineReader interface {
	// ReadLine blocks until a full record is available or the writer has
	// closed. The record is returned without its trailing newline. Once the
	// writer has closed and all buffered records are drained, ReadLine
	// returns io.EOF.
	ReadLine() (string, error)

	// Close releases the read end. Idempotent.
	Close() error
}

// LineWriter is the write end of a line channel.
type LineWriter interface {
	// WriteLine writes one record, appending the newline terminator if the
	// record does not already carry one.
	WriteLine(line string) error

	// Close flushes buffered records and signals end-of-stream to the
	// reader. Close is idempotent and never blocks waiting on the peer.
	Close() error
}
