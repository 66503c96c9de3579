// Package preflight provides readiness checks for the executables and
// directories vidmerge depends on.
//
// The CLI "vidmerge check" command renders these results as a table. Checks
// never provision anything; they only report what a run would find.
package preflight
