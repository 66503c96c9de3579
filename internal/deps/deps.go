// Package deps locates the external executables the downloader drives and
// reports their availability.
package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrExecutableMissing reports that a configured executable could not be found.
var ErrExecutableMissing = errors.New("executable not found")

// Requirement defines an external dependency vidmerge relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
	// Source names the lookup tier that found the command.
	Source Source
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, source, err := locate(cmd)
		if err != nil {
			status.Detail = err.Error()
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Source = source
		status.Available = true
		results = append(results, status)
	}
	return results
}

// ResolveExecutable turns command into an absolute executable path. Values
// containing a path separator are checked on disk as-is; bare names are
// looked up on PATH. The returned error wraps ErrExecutableMissing.
func ResolveExecutable(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("%w: command not configured", ErrExecutableMissing)
	}
	resolved, _, err := locate(command)
	return resolved, err
}

func locate(command string) (string, Source, error) {
	if strings.ContainsRune(command, '/') || strings.ContainsRune(command, filepath.Separator) {
		info, err := os.Stat(command)
		if err != nil || !isExecutable(info) {
			return "", SourceNone, fmt.Errorf("%w: %s does not exist", ErrExecutableMissing, command)
		}
		abs, err := filepath.Abs(command)
		if err != nil {
			abs = command
		}
		return abs, SourceConfigured, nil
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return "", SourceNone, fmt.Errorf("%w: binary %q not found", ErrExecutableMissing, command)
	}
	return resolved, SourcePath, nil
}

func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
