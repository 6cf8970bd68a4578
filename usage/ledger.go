package usage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/voiceingest/logger"
	"github.com/kbukum/voiceingest/quota"
)

// Ledger records billable attempts and reports usage.
type Ledger struct {
	store Store
	tiers quota.TierSource
	clock func() time.Time
	log   *logger.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// NewLedger creates a Ledger over store, with limits from tiers.
func NewLedger(store Store, tiers quota.TierSource, log *logger.Logger, opts ...Option) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	l := &Ledger{
		store: store,
		tiers: tiers,
		clock: time.Now,
		log:   log.WithComponent("usage"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordTranscription records one speech-to-text attempt for identity
// under key. Blank transcripts are skipped and leave the counter alone.
func (l *Ledger) RecordTranscription(ctx context.Context, identity, key, transcript string) (Outcome, error) {
	if strings.TrimSpace(transcript) == "" {
		return Outcome{Skipped: true}, nil
	}
	return l.record(ctx, Attempt{
		Identity:       identity,
		IdempotencyKey: key,
		Kind:           KindSTT,
		At:             l.clock(),
	})
}

func (l *Ledger) record(ctx context.Context, a Attempt) (Outcome, error) {
	recorded, err := l.store.Record(ctx, a)
	if err != nil {
		return Outcome{}, fmt.Errorf("record %s usage: %w", a.Kind, err)
	}

	fields := logger.Fields(
		logger.FieldUserID, a.Identity,
		logger.FieldIdempotencyKey, a.IdempotencyKey,
		"kind", a.Kind,
	)
	out := Outcome{Recorded: recorded, AlreadyRecorded: !recorded}
	if recorded {
		l.log.Debug("usage recorded", fields)
	} else {
		l.log.Info("usage already recorded", fields)
	}

	u, err := l.usageAt(ctx, a.Identity, a.Kind, a.At)
	if err != nil {
		// the write stands; only the report is missing
		l.log.Warn("usage read after record failed", logger.ErrorFields("usage", err))
		return out, nil
	}
	out.Usage = &u
	return out, nil
}

// Usage returns today's count and limit for identity and kind.
func (l *Ledger) Usage(ctx context.Context, identity, kind string) (Usage, error) {
	return l.usageAt(ctx, identity, kind, l.clock())
}

func (l *Ledger) usageAt(ctx context.Context, identity, kind string, at time.Time) (Usage, error) {
	used, err := l.store.Count(ctx, identity, at, kind)
	if err != nil {
		return Usage{}, err
	}
	limit := quota.Unlimited
	if l.tiers != nil {
		if limit, err = l.tiers.Limit(ctx, identity, kind); err != nil {
			return Usage{}, fmt.Errorf("read limit: %w", err)
		}
	}
	return Usage{Used: used, Limit: limit}, nil
}
