package usage

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/voiceingest/quota"
)

func newTestLedger(t *testing.T, store Store) *Ledger {
	t.Helper()
	tiers, err := quota.NewStaticTiers(quota.Config{
		DefaultTier: "free",
		Tiers: map[string]map[string]int64{
			"free": {KindSTT: 20},
			"pro":  {KindSTT: quota.Unlimited},
		},
		Identities: map[string]string{"pro-user": "pro"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewLedger(store, tiers, nil, WithClock(func() time.Time { return fixedNow }))
}

func TestLedger_RecordTranscription(t *testing.T) {
	l := newTestLedger(t, NewMemoryStore())
	ctx := context.Background()

	out, err := l.RecordTranscription(ctx, "pro-user", "k1", "hello world")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Recorded || out.AlreadyRecorded || out.Skipped {
		t.Errorf("unexpected outcome %+v", out)
	}
	if out.Usage == nil || *out.Usage != (Usage{Used: 1, Limit: quota.Unlimited}) {
		t.Errorf("unexpected usage %+v", out.Usage)
	}

	again, err := l.RecordTranscription(ctx, "pro-user", "k1", "hello world")
	if err != nil {
		t.Fatal(err)
	}
	if again.Recorded || !again.AlreadyRecorded {
		t.Errorf("expected already recorded, got %+v", again)
	}
	if again.Usage == nil || again.Usage.Used != 1 {
		t.Errorf("usage must not change on replay, got %+v", again.Usage)
	}
}

func TestLedger_BlankTranscriptsAreSkipped(t *testing.T) {
	store := NewMemoryStore()
	l := newTestLedger(t, store)

	for _, text := range []string{"", " ", "\n\t "} {
		out, err := l.RecordTranscription(context.Background(), "u1", uuid.NewString(), text)
		if err != nil {
			t.Fatal(err)
		}
		if !out.Skipped || out.Usage != nil {
			t.Errorf("transcript %q: expected skip without usage, got %+v", text, out)
		}
	}
	if n, _ := store.Count(context.Background(), "u1", fixedNow, KindSTT); n != 0 {
		t.Errorf("expected no usage, got %d", n)
	}
}

func TestLedger_UsageReportsLimit(t *testing.T) {
	l := newTestLedger(t, NewMemoryStore())
	ctx := context.Background()
	_, _ = l.RecordTranscription(ctx, "free-user", "a", "one")
	_, _ = l.RecordTranscription(ctx, "free-user", "b", "two")

	u, err := l.Usage(ctx, "free-user", KindSTT)
	if err != nil {
		t.Fatal(err)
	}
	if u != (Usage{Used: 2, Limit: 20}) {
		t.Errorf("unexpected usage %+v", u)
	}
}

type failingStore struct{ MemoryStore }

func (*failingStore) Record(context.Context, Attempt) (bool, error) {
	return false, errors.New("disk full")
}

func TestLedger_StoreErrorPropagates(t *testing.T) {
	l := newTestLedger(t, &failingStore{})
	if _, err := l.RecordTranscription(context.Background(), "u1", "k", "text"); err == nil {
		t.Fatal("expected store error")
	}
}

func TestIdempotencyKey(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/stt/transcribe", nil)
	r.Header.Set(HeaderXIdempotencyKey, "x-key")
	if got := IdempotencyKey(r); got != "x-key" {
		t.Errorf("expected x-key, got %q", got)
	}
	r.Header.Set(HeaderIdempotencyKey, "primary")
	if got := IdempotencyKey(r); got != "primary" {
		t.Errorf("Idempotency-Key should win, got %q", got)
	}

	bare := httptest.NewRequest("POST", "/api/stt/transcribe", nil)
	k1, k2 := IdempotencyKey(bare), IdempotencyKey(bare)
	if _, err := uuid.Parse(k1); err != nil {
		t.Errorf("generated key should be a UUID, got %q", k1)
	}
	if k1 == k2 {
		t.Error("generated keys must be unique per call")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Backend = "cassandra"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unknown backend to fail")
	}
}
