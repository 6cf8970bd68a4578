// Package quota reads the caller's plan tier and the per-kind limit that
// applies to it. It never enforces anything; callers decide what to do
// with the limit.
package quota

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kbukum/voiceingest/validation"
)

// Unlimited is the limit reported for uncapped tiers and unknown kinds.
const Unlimited int64 = -1

// TierSource reports the limit for an identity and kind.
type TierSource interface {
	Limit(ctx context.Context, identity, kind string) (int64, error)
}

// Config describes static tiers.
//
//	default_tier: free
//	tiers:
//	  free: {stt: 20}
//	  pro:  {stt: -1}
//	identities:
//	  user-1: pro
type Config struct {
	DefaultTier string                      `mapstructure:"default_tier" validate:"required"`
	Tiers       map[string]map[string]int64 `mapstructure:"tiers"`
	Identities  map[string]string           `mapstructure:"identities"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.DefaultTier == "" {
		c.DefaultTier = "free"
	}
	if len(c.Tiers) == 0 {
		c.Tiers = map[string]map[string]int64{
			"free": {"stt": 20},
			"pro":  {"stt": Unlimited},
		}
	}
}

// Validate checks that every referenced tier exists and limits are sane.
func (c *Config) Validate() error {
	v := validation.New("quota")
	v.Merge("", validation.Struct("", c))
	if _, ok := c.Tiers[c.DefaultTier]; c.DefaultTier != "" && !ok {
		v.AddError("default_tier", fmt.Sprintf("unknown tier %q", c.DefaultTier))
	}
	for _, id := range sortedKeys(c.Identities) {
		if _, ok := c.Tiers[c.Identities[id]]; !ok {
			v.AddError("identities."+id, fmt.Sprintf("unknown tier %q", c.Identities[id]))
		}
	}
	for _, tier := range sortedKeys(c.Tiers) {
		for kind, limit := range c.Tiers[tier] {
			v.Custom(limit >= Unlimited, "tiers."+tier+"."+kind, "must be -1 (unlimited) or >= 0")
		}
	}
	return v.Err()
}

// StaticTiers is a TierSource backed by configuration.
type StaticTiers struct {
	cfg Config
}

var _ TierSource = (*StaticTiers)(nil)

// NewStaticTiers validates cfg and returns a tier source.
func NewStaticTiers(cfg Config) (*StaticTiers, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &StaticTiers{cfg: cfg}, nil
}

// Tier returns the tier assigned to identity. Config keys may have been
// lower-cased by the loader, so a case-insensitive match is tried second.
func (s *StaticTiers) Tier(identity string) string {
	if t, ok := s.cfg.Identities[identity]; ok {
		return t
	}
	if t, ok := s.cfg.Identities[strings.ToLower(identity)]; ok {
		return t
	}
	return s.cfg.DefaultTier
}

// Limit returns the limit for identity and kind. Unknown kinds are unlimited.
func (s *StaticTiers) Limit(_ context.Context, identity, kind string) (int64, error) {
	limits := s.cfg.Tiers[s.Tier(identity)]
	if limit, ok := limits[kind]; ok {
		return limit, nil
	}
	return Unlimited, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
