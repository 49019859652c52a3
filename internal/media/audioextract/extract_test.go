package audioextract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"introspect/internal/services"
)

func writeStub(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return path
}

func TestNewMissingBinary(t *testing.T) {
	_, err := New("definitely-not-ffmpeg-xyz")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestExtractBuildsNormalizedWaveArgs(t *testing.T) {
	writeStub(t, "ffmpeg")
	extractor, err := New("ffmpeg")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	var gotArgs []string
	extractor.WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, nil
	})

	dest, err := extractor.Extract(context.Background(), "journal.mp4", "out.wav")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if dest != "out.wav" {
		t.Fatalf("expected dest out.wav, got %q", dest)
	}

	joined := strings.Join(gotArgs, " ")
	for _, fragment := range []string{"-ac 1", "-ar 16000", "-c:a pcm_s16le", "-y", "-vn"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in ffmpeg args %q", fragment, joined)
		}
	}
	if gotArgs[len(gotArgs)-1] != "out.wav" {
		t.Fatalf("expected dest as final arg, got %q", gotArgs[len(gotArgs)-1])
	}
}

func TestExtractSurfacesTranscoderDiagnostics(t *testing.T) {
	writeStub(t, "ffmpeg")
	extractor, err := New("ffmpeg")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	extractor.WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("journal.mp4: Invalid data found"), errors.New("exit status 1")
	})

	_, err = extractor.Extract(context.Background(), "journal.mp4", "out.wav")
	if err == nil {
		t.Fatal("expected error from ffmpeg failure")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected diagnostic output in error, got %v", err)
	}
}

func TestExtractRequiresPaths(t *testing.T) {
	writeStub(t, "ffmpeg")
	extractor, err := New("ffmpeg")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := extractor.Extract(context.Background(), "", "out.wav"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty source, got %v", err)
	}
	if _, err := extractor.Extract(context.Background(), "journal.mp4", " "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty dest, got %v", err)
	}
}
