// Package postgres provides PostgreSQL-specific implementations for the
// data storage interfaces defined in the internal/store package. It handles
// the details of query execution and data mapping between domain entities
// and database records.
package postgres
