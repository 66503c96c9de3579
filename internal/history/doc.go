// Package history persists one row per download run in a SQLite database
// under the state directory so past outcomes can be listed with
// `vidmerge history`.
package history
