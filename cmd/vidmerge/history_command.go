package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vidmerge/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent download runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "History is disabled (history.enabled = false)")
				return nil
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No downloads recorded")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, historyRow(entry))
			}
			fmt.Fprintln(out, renderTable(historyColumns, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "Maximum number of runs to show")
	return cmd
}

func historyRow(entry history.Entry) []string {
	started := "-"
	if !entry.StartedAt.IsZero() {
		started = entry.StartedAt.Local().Format("2006-01-02 15:04")
	}
	size := "-"
	if entry.SizeBytes >= 0 && entry.FinalPath != "" {
		size = humanize.Bytes(uint64(entry.SizeBytes))
	}
	took := "-"
	if d := entry.Duration(); d > 0 {
		took = d.Round(time.Second).String()
	}
	file := entry.FinalPath
	if file == "" {
		file = entry.Detail
	}
	mode := entry.Mode
	if mode == "" {
		mode = "-"
	}
	return []string{started, entry.Outcome, mode, entry.Quality, size, took, file, truncate(entry.URL, 60)}
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}

var historyColumns = []column{
	{title: "Started"},
	{title: "Outcome"},
	{title: "Mode"},
	{title: "Quality"},
	{title: "Size", numeric: true},
	{title: "Took", numeric: true},
	{title: "File"},
	{title: "URL"},
}
