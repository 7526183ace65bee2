// Package logging provides structured logging using uber/zap.
//
// Two modes are offered:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// All output defaults to stderr because the pipeline owns stdout for the
// sorted record stream.
package logging
