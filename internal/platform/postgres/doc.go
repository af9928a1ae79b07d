// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles query execution, mapping between domain entities and database
// records, and translation of PostgreSQL error codes into store errors.
// Schema migrations live in the migrations subpackage and are embedded into
// the binary.
package postgres
