package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// FakeTranscoder writes an executable shell script named ffmpeg into dir.
// The script sees its last argument, the output path, as $out.
func FakeTranscoder(t testing.TB, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nfor out; do :; done\n" + body + "\n"
	if err := os.WriteFile(p, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake transcoder: %v", err)
	}
	return p
}

// CopyingTranscoder is a FakeTranscoder that writes wav to the output path.
func CopyingTranscoder(t testing.TB, dir string, wav []byte) string {
	t.Helper()
	fixture := filepath.Join(dir, "fixture.wav")
	if err := os.WriteFile(fixture, wav, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return FakeTranscoder(t, dir, `cp "`+fixture+`" "$out"`)
}
