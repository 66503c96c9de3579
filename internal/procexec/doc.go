// Package procexec runs external command-line tools synchronously.
//
// A child's stdout and stderr share one OS pipe, so their output arrives
// interleaved exactly as the tool wrote it. The pipe is drained line by line
// on the calling goroutine (carriage returns count as line breaks so progress
// meters surface as discrete updates) and the call returns only after the
// child has exited and every handle is released. Callers inject an Executor so
// tests can replace real processes with scripted fakes.
package procexec
