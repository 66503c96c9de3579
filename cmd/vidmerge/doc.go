// Package main hosts the vidmerge CLI entrypoint and command graph.
//
// The root command takes a video URL plus optional quality and output
// directory and hands them to the download orchestrator. Subcommands cover
// dependency checks, run history, and configuration scaffolding. Keep this
// package thin: behaviour belongs in the internal packages.
package main
