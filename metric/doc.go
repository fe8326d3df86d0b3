// Package metric provides Prometheus metrics for the exchange: event
// projection counters and timings, match latencies and result sizes,
// taxonomy refresh tracking, and store error counts, plus the HTTP server
// exposing them for scraping.
//
// All Metrics methods are nil-safe so components can run unmetered in
// tests; pass nil instead of a Metrics and every observation is a no-op.
package metric
