// Command pipesort sorts an unbounded stream of newline-terminated records
// using a pool of worker processes and a streaming k-way merge.
//
// Architecture:
//
//	stdin → Distributor → N worker processes (sort) → Merger → stdout
//
// Each worker is a re-exec of this binary in the hidden "worker" mode,
// connected to the parent by a pair of pipes. Workers sort independently and
// in parallel; the merger recombines their sorted streams into one globally
// sorted output. Gzip-compressed input is decompressed transparently.
//
// Configuration:
//   - Environment variables (12-factor, PIPESORT_*; see internal/config)
//   - CLI flags (override env vars)
//   - Defaults reproduce the reference shape: 5 workers, 4096-byte records
//
// Usage:
//
//	pipesort < unsorted.txt > sorted.txt
//	pipesort -workers 8 -max-record 8192 < input.log > sorted.log
//
// Exit status is 0 when all workers exited normally and the merge completed,
// non-zero otherwise; diagnostics on stderr name the workers that failed.
//
// Signals:
//   - SIGINT, SIGTERM: kill the worker pool and exit non-zero
package main
