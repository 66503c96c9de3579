package preflight

import (
	"context"
	"fmt"

	"vidmerge/internal/config"
	"vidmerge/internal/deps"
	"vidmerge/internal/procexec"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config, exec procexec.Executor) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(ctx, cfg, exec) {
		results = append(results, fromStatus(status))
	}
	results = append(results, CheckOutputDirectory("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckOutputDirectory("State directory", cfg.Paths.StateDir))
	return results
}

func fromStatus(status deps.Status) Result {
	result := Result{Name: status.Name, Passed: status.Available}
	switch {
	case status.Available && status.Detail != "":
		result.Detail = fmt.Sprintf("%s (%s, %s)", status.Command, status.Source, status.Detail)
	case status.Available:
		result.Detail = fmt.Sprintf("%s (%s)", status.Command, status.Source)
	case status.Optional:
		result.Detail = status.Detail + " (optional: downloads stay unmerged)"
	default:
		result.Detail = status.Detail
	}
	return result
}
