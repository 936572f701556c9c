// Package cache serves health documents from a TTL cache.
//
// NewReporter wraps a health.Reporting so that concurrent scrapes within one
// TTL window share a single check cycle. Keys are derived from a scope and a
// set of parameters with SHA-256; only successfully encoded documents are
// stored.
package cache
