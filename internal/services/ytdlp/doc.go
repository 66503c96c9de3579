// Package ytdlp mediates access to the yt-dlp command-line downloader.
//
// It builds argument lists for the invocations vidmerge needs (combined
// download-and-merge, single-stream pulls, the title probe, and the
// dependency-provisioning run), narrates each command, and streams yt-dlp's
// output through a caller-supplied line sink. It also recognises the
// "Merging formats into" announcement so callers can learn which file a
// combined download produced.
//
// Prefer this package over ad-hoc exec.Command usage so command narration and
// error classification stay consistent.
package ytdlp
