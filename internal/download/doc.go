// Package download orchestrates a single video download.
//
// A run resolves yt-dlp and ffmpeg, then works through an ordered list of
// strategies. Combined mode asks yt-dlp to fetch and merge in one call and
// follows up with an audio compatibility re-encode. Separate mode pulls the
// video and audio streams into intermediates and merges them with ffmpeg,
// retrying once with a reduced command line. Each run holds an advisory lock
// on its output directory and is recorded in the history database.
package download
