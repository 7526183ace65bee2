// Package monitoring provides Prometheus metrics for the sort pipeline:
// data-plane throughput counters, worker pool health, and run duration.
//
// Exposition is optional (PIPESORT_METRICS_ADDR); collection is not.
package monitoring
