// Package channel provides the line channel abstraction used to move
// newline-terminated records between pipeline stages and worker processes.
//
// A channel is unidirectional and ordered, with exactly one writer and one
// reader. Two implementations are provided:
//   - Reader/Writer: buffered line I/O over an OS pipe (or any io.Reader/
//     io.Writer), used for real worker processes
//   - Memory: an in-process blocking channel, used to test pipeline stages
//     without spawning processes
//
// Records are bounded by a fixed maximum length including the newline
// terminator (default 4096 bytes). The policy for oversized records is
// fail-fast: ReadLine returns ErrRecordTooLong and the run aborts, rather
// than silently truncating and emitting corrupted records.
package channel
