package quota

import (
	"context"
	"strings"
	"testing"
)

func TestStaticTiers_Limit(t *testing.T) {
	tiers, err := NewStaticTiers(Config{
		DefaultTier: "free",
		Tiers: map[string]map[string]int64{
			"free": {"stt": 20},
			"pro":  {"stt": Unlimited},
		},
		Identities: map[string]string{"user-1": "pro"},
	})
	if err != nil {
		t.Fatalf("NewStaticTiers: %v", err)
	}

	tests := []struct {
		identity, kind string
		want           int64
	}{
		{"user-1", "stt", Unlimited},
		{"USER-1", "stt", Unlimited},
		{"someone", "stt", 20},
		{"someone", "tts", Unlimited},
	}
	for _, tc := range tests {
		got, err := tiers.Limit(context.Background(), tc.identity, tc.kind)
		if err != nil {
			t.Fatalf("Limit: %v", err)
		}
		if got != tc.want {
			t.Errorf("Limit(%q, %q) = %d, want %d", tc.identity, tc.kind, got, tc.want)
		}
	}
}

func TestStaticTiers_Defaults(t *testing.T) {
	tiers, err := NewStaticTiers(Config{})
	if err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	if tiers.Tier("anyone") != "free" {
		t.Errorf("expected default tier free, got %q", tiers.Tier("anyone"))
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			"unknown default tier",
			Config{DefaultTier: "gold", Tiers: map[string]map[string]int64{"free": {"stt": 1}}},
			"default_tier",
		},
		{
			"identity references unknown tier",
			Config{DefaultTier: "free", Tiers: map[string]map[string]int64{"free": {}}, Identities: map[string]string{"u": "gold"}},
			"identities.u",
		},
		{
			"negative limit",
			Config{DefaultTier: "free", Tiers: map[string]map[string]int64{"free": {"stt": -5}}},
			"tiers.free.stt",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}
