// Package ffmpeg wraps the ffmpeg command line for the two jobs the
// downloader needs: muxing a separately fetched video and audio stream into
// an mp4, and re-encoding the audio track of an existing file while copying
// its video stream untouched.
package ffmpeg
