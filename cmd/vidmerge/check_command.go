package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidmerge/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report yt-dlp, ffmpeg and directory readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, nil)

			rows := make([][]string, 0, len(results))
			for _, result := range results {
				rows = append(rows, []string{result.Name, passLabel(result.Passed), result.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]column{{title: "Check"}, {title: "Status"}, {title: "Detail"}}, rows))
			if ctx.configPath != "" {
				fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			}
			return nil
		},
	}
}

func passLabel(ok bool) string {
	if ok {
		return "OK"
	}
	return "MISSING"
}
