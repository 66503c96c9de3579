// Package textutil normalizes titles and file names so that names produced by
// external tools can be matched reliably on disk.
package textutil
