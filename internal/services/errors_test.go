package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vidmerge/internal/services"
)

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "ffmpeg", "merge", "strict", cause)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped, got %v", err)
	}
	if !strings.Contains(err.Error(), "ffmpeg: merge: strict") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapRetagsCancellation(t *testing.T) {
	err := services.Wrap(services.ErrExternalTool, "yt-dlp", "download", "", context.Canceled)
	if !errors.Is(err, services.ErrInterrupted) {
		t.Fatalf("expected interrupted marker, got %v", err)
	}
	if !services.IsInterrupted(err) {
		t.Fatal("IsInterrupted should be true")
	}
	if services.IsInterrupted(services.Wrap(services.ErrConfiguration, "yt-dlp", "", "", nil)) {
		t.Fatal("not-found should not count as interrupted")
	}
}

func TestWrapDefaults(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
