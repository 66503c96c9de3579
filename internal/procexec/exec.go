package procexec

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/alessio/shellescape"
)

const maxLineBytes = 1024 * 1024

// ErrTimeout marks a child killed because it outlived CommandExecutor.Timeout.
// It does not wrap context.DeadlineExceeded: the caller's context is still
// live, so the caller may try something else.
var ErrTimeout = errors.New("timed out")

// Executor abstracts command execution for testability.
type Executor interface {
	// Run streams combined output lines to onLine and blocks until the child exits.
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
	// Output runs the child and returns its captured stdout and stderr.
	Output(ctx context.Context, binary string, args []string) (stdout []byte, stderr []byte, err error)
}

// CommandExecutor is the os/exec backed Executor. A positive Timeout bounds
// each child process; zero waits indefinitely.
type CommandExecutor struct {
	Timeout time.Duration
}

// Run implements Executor.
func (e CommandExecutor) Run(parent context.Context, binary string, args []string, onLine func(string)) error {
	ctx, cancel := e.scope(parent)
	defer cancel()

	reader, writer, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("output pipe: %w", err)
	}
	defer reader.Close()

	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stdout = writer
	cmd.Stderr = writer
	if err := cmd.Start(); err != nil {
		_ = writer.Close()
		return fmt.Errorf("start %s: %w", filepath.Base(binary), err)
	}
	// The child owns its copy of the write end; closing ours lets the
	// scanner observe EOF once the child (and anything it spawned) exits.
	_ = writer.Close()

	stop := context.AfterFunc(ctx, func() { _ = reader.Close() })
	defer stop()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	scanner.Split(ScanLines)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	if err := e.stopped(parent, ctx, binary); err != nil {
		return err
	}
	if waitErr != nil {
		return fmt.Errorf("%s failed: %w", filepath.Base(binary), waitErr)
	}
	if scanErr != nil {
		return fmt.Errorf("read %s output: %w", filepath.Base(binary), scanErr)
	}
	return nil
}

// Output implements Executor.
func (e CommandExecutor) Output(parent context.Context, binary string, args []string) ([]byte, []byte, error) {
	ctx, cancel := e.scope(parent)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stopErr := e.stopped(parent, ctx, binary); stopErr != nil {
			return stdout.Bytes(), stderr.Bytes(), stopErr
		}
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("%s failed: %w", filepath.Base(binary), err)
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

func (e CommandExecutor) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout > 0 {
		return context.WithTimeout(ctx, e.Timeout)
	}
	return context.WithCancel(ctx)
}

// stopped reports why the child was killed, if it was. Cancellation of the
// caller's context wins over the per-child timeout.
func (e CommandExecutor) stopped(parent, child context.Context, binary string) error {
	name := filepath.Base(binary)
	if err := parent.Err(); err != nil {
		return fmt.Errorf("%s interrupted: %w", name, err)
	}
	if child.Err() != nil {
		return fmt.Errorf("%s ran longer than %s: %w", name, e.Timeout, ErrTimeout)
	}
	return nil
}

// ExitCode extracts the child's exit status from an Executor error. It
// returns 0 for nil and -1 when the process never produced an exit status
// (failed to start, killed by a signal, interrupted).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Describe renders a command line the way an operator would type it.
func Describe(binary string, args []string) string {
	return shellescape.QuoteCommand(append([]string{binary}, args...))
}

// ScanLines is a bufio.SplitFunc that treats "\n", "\r\n", and a lone "\r" as
// line terminators. Empty lines are preserved.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		switch b {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if atEOF {
				return i + 1, data[:i], nil
			}
			// Need one more byte to tell "\r" from "\r\n".
			return 0, nil, nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
