// Package pipeline implements the multi-process external sort: a Supervisor
// owns a fixed pool of worker processes, a Distributor fans input records out
// to them round-robin, each worker sorts its share independently, and a
// Merger recombines the sorted partial streams with a streaming k-way merge.
//
// Data flow:
//
//	input → Distributor → N inbound pipes → worker (sort) → N outbound pipes → Merger → output
//
// Each channel has exactly one writer and one reader; the Supervisor is the
// only component that creates, observes, or reaps worker processes. All
// worker processes and channel endpoints are created before the first input
// record is read, which is what rules out the pipe-buffer deadlock between a
// feeding distributor and a flushing worker.
//
// Workers exiting abnormally do not abort the run: their outbound channel
// closing reads as ordinary exhaustion, the merge proceeds with the
// survivors, and the failure is surfaced in the final Report.
package pipeline
