package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vidmerge/internal/download"
)

// errUsage signals that usage text was already printed.
var errUsage = errors.New("usage")

const usageText = `Usage: vidmerge <video_url> [quality] [output_dir]
Available qualities: best, 720p, 1080p
Example: vidmerge https://www.youtube.com/watch?v=dQw4w9WgXcQ 720p ./downloads
`

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	var rootCmd *cobra.Command
	rootCmd = &cobra.Command{
		Use:           "vidmerge <video_url> [quality] [output_dir]",
		Short:         "Download a video with yt-dlp and merge it into one MP4 with ffmpeg",
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd == rootCmd && len(args) == 0 {
				return nil
			}
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				printUsage(cmd.OutOrStdout())
				return errUsage
			}
			return runDownload(cmd, ctx, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func printUsage(out io.Writer) {
	fmt.Fprint(out, usageText)
}

func runDownload(cmd *cobra.Command, ctx *commandContext, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}

	job := download.Job{URL: args[0]}
	if len(args) > 1 {
		job.Quality = args[1]
	}
	if len(args) > 2 {
		job.OutputDir = args[2]
	}
	if job.URL == "" {
		printUsage(cmd.OutOrStdout())
		return errUsage
	}

	downloader, err := download.New(cfg, logger, download.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	// Anything past a started run is reported in the log and history, not
	// through the exit code.
	_, err = downloader.Run(cmd.Context(), job)
	return err
}
