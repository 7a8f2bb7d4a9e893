// Package memstore provides in-memory implementations of the data storage
// interfaces defined in the internal/store package. It is intended for
// tests and local development where a real PostgreSQL instance is not
// available. All implementations are safe for concurrent use.
package memstore
