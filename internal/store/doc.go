// Package store defines persistence interfaces and shared database helpers.
// Concrete implementations live under internal/platform/postgres.
package store
