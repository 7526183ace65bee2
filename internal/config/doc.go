// Package config provides 12-factor configuration for pipesort.
//
// Configuration is loaded from environment variables with sensible defaults;
// no configuration is required to reproduce the reference behavior (five
// workers, 4096-byte records). CLI flags can override environment variables.
//
// Environment Variables:
//   - PIPESORT_WORKERS, PIPESORT_MAX_RECORD, PIPESORT_REAP_TIMEOUT
//   - PIPESORT_LOG_LEVEL, PIPESORT_LOG_DEV
//   - PIPESORT_METRICS_ADDR
package config
