package transcode

import (
	"slices"
	"testing"
)

func TestNeedsConversion(t *testing.T) {
	tests := []struct {
		mime string
		want bool
	}{
		{"audio/webm", true},
		{"audio/webm;codecs=opus", true},
		{"video/webm", true},
		{"AUDIO/OGG", true},
		{"application/ogg", true},
		{"audio/opus", true},
		{"audio/x-matroska", true},
		{"audio/wav", false},
		{"audio/mpeg", false},
		{"audio/mp4", false},
		{"audio/x-m4a", false},
		{"", false},
		{"application/octet-stream", false},
	}
	for _, tc := range tests {
		t.Run(tc.mime, func(t *testing.T) {
			if got := NeedsConversion(tc.mime); got != tc.want {
				t.Errorf("NeedsConversion(%q) = %v, want %v", tc.mime, got, tc.want)
			}
		})
	}
}

func TestSpeechArgs(t *testing.T) {
	got := Speech16kMono.Args("in.webm", "in.webm.16k.wav")
	want := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", "in.webm",
		"-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le", "-f", "wav",
		"in.webm.16k.wav",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Args() = %v\nwant %v", got, want)
	}
}

func TestDetectMimeType(t *testing.T) {
	dir := t.TempDir()
	wav := writeFile(t, dir, "clip", wavBytes(16000, 1, 1600, false))

	if got := DetectMimeType(wav, "audio/webm"); got != "audio/webm" {
		t.Errorf("declared type should win, got %q", got)
	}
	for _, declared := range []string{"", "application/octet-stream"} {
		if got := DetectMimeType(wav, declared); got != "audio/wav" {
			t.Errorf("DetectMimeType(%q) = %q, want sniffed audio/wav", declared, got)
		}
	}
	if got := DetectMimeType("/nonexistent", ""); got != "" {
		t.Errorf("unreadable file should keep declared type, got %q", got)
	}
}

func TestReadWAVHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.wav", wavBytes(44100, 2, 441, true))

	info, err := ReadWAVHeader(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := WAVInfo{AudioFormat: 1, Channels: 2, SampleRate: 44100, BitsPerSample: 16}
	if info != want {
		t.Errorf("ReadWAVHeader() = %+v, want %+v", info, want)
	}

	notWav := writeFile(t, dir, "b.webm", []byte("\x1aE\xdf\xa3 not a wav file"))
	if _, err := ReadWAVHeader(notWav); err != ErrNotWAV {
		t.Errorf("expected ErrNotWAV, got %v", err)
	}
}

func TestProviderFileName(t *testing.T) {
	tests := []struct {
		name, fileName, path, mimeType, want string
	}{
		{"matching extension", "clip.wav", "/tmp/stt-1.wav", "audio/wav", "clip.wav"},
		{"case-insensitive", "clip.WAV", "/tmp/stt-1.wav", "audio/x-wav", "clip.WAV"},
		{"missing extension", "blob", "/tmp/stt-1.mp3", "audio/mpeg", "blob.mp3"},
		{"conflicting extension", "song.mp3", "/tmp/stt-1.wav", "audio/wav", "song.wav"},
		{"parameters ignored", "blob", "/tmp/stt-1.bin", "audio/mpeg; charset=binary", "blob.mp3"},
		{"unknown type keeps name", "take.xyz", "/tmp/stt-1.xyz", "audio/x-unknown", "take.xyz"},
		{"unknown type uses stored extension", "blob", "/tmp/stt-1.flac", "audio/x-unknown", "blob.flac"},
		{"empty name", "", "/tmp/stt-1.mp3", "audio/mpeg", "stt-1.mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := providerFileName(tt.fileName, tt.path, tt.mimeType); got != tt.want {
				t.Errorf("providerFileName(%q, %q, %q) = %q, want %q", tt.fileName, tt.path, tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestFormatMatches(t *testing.T) {
	ok := WAVInfo{AudioFormat: 1, Channels: 1, SampleRate: 16000, BitsPerSample: 16}
	if !Speech16kMono.matches(ok) {
		t.Errorf("expected %+v to match", ok)
	}
	for _, bad := range []WAVInfo{
		{AudioFormat: 3, Channels: 1, SampleRate: 16000, BitsPerSample: 16},
		{AudioFormat: 1, Channels: 1, SampleRate: 16000, BitsPerSample: 8},
		{AudioFormat: 1, Channels: 2, SampleRate: 16000, BitsPerSample: 16},
		{AudioFormat: 1, Channels: 1, SampleRate: 44100, BitsPerSample: 16},
	} {
		if Speech16kMono.matches(bad) {
			t.Errorf("expected %+v not to match", bad)
		}
	}
}
