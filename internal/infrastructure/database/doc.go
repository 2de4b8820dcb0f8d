// Package database provides the SQLite persistence layer for Customer Core.
//
// It wraps database/sql with connection setup tuned for SQLite (WAL mode,
// busy timeout, single writer), a health check used by the API, and a
// migration runner that applies embedded SQL schema files in version order.
//
// All repositories in the auth, customer, and audit packages are built on
// top of this package.
package database
