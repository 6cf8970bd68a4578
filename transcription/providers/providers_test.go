package providers

import (
	"slices"
	"testing"

	"github.com/kbukum/voiceingest/transcription"
)

func TestNewRegistryHasBuiltins(t *testing.T) {
	if got := NewRegistry().List(); !slices.Equal(got, []string{"openai", "whisper"}) {
		t.Errorf("unexpected factories %v", got)
	}
}

func TestBuildSelectsProvider(t *testing.T) {
	p, err := Build(transcription.Config{
		Provider: "whisper",
		Providers: map[string]map[string]any{
			"whisper": {"url": "http://whisper:8387"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "whisper" {
		t.Errorf("expected whisper, got %q", p.Name())
	}

	def, err := Build(transcription.Config{})
	if err != nil || def.Name() != "openai" {
		t.Errorf("expected openai default, got %v, %v", def, err)
	}
}

func TestBuildUnknownProvider(t *testing.T) {
	if _, err := Build(transcription.Config{Provider: "deepgram"}); err == nil {
		t.Error("expected unknown provider to fail")
	}
}
