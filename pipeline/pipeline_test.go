package pipeline

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	apperrors "github.com/kbukum/voiceingest/errors"
	"github.com/kbukum/voiceingest/intake"
	"github.com/kbukum/voiceingest/quota"
	"github.com/kbukum/voiceingest/testutil"
	"github.com/kbukum/voiceingest/toolchain"
	"github.com/kbukum/voiceingest/transcode"
	"github.com/kbukum/voiceingest/transcription"
	"github.com/kbukum/voiceingest/usage"
)

type staticResolver struct{ res toolchain.Resolution }

func (s staticResolver) Resolve(context.Context) toolchain.Resolution { return s.res }

type fixture struct {
	p        *Pipeline
	tempDir  string
	provider *testutil.Provider
	store    usage.Store
}

func newFixture(t *testing.T, resolver transcode.ToolResolver, store usage.Store) *fixture {
	t.Helper()
	if store == nil {
		store = usage.NewMemoryStore()
	}
	tiers, err := quota.NewStaticTiers(quota.Config{
		DefaultTier: "pro",
		Tiers:       map[string]map[string]int64{"pro": {usage.KindSTT: quota.Unlimited}},
	})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	provider := &testutil.Provider{Text: "hello world"}
	p, err := New(
		intake.New(intake.Config{TempDir: dir}, nil),
		transcode.NewEngine(transcode.Config{Timeout: 5 * time.Second}, resolver, nil),
		transcription.NewClient(provider, transcription.Config{}, nil),
		usage.NewLedger(store, tiers, nil),
		nil,
		WithProviderName("fake"),
	)
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{p: p, tempDir: dir, provider: provider, store: store}
}

// assertCleaned waits for released scopes and checks the temp dir is empty.
func (f *fixture) assertCleaned(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.p.Wait(ctx); err != nil {
		t.Fatalf("wait for cleanup: %v", err)
	}
	if left := testutil.ListDir(t, f.tempDir); len(left) != 0 {
		t.Errorf("temporary files left behind: %v", left)
	}
}

func wavUpload(headers map[string]string) testutil.Upload {
	if headers == nil {
		headers = map[string]string{"X-User-Id": "u1"}
	}
	return testutil.Upload{Field: "audio", FileName: "clip.wav", MimeType: "audio/wav", Data: testutil.SpeechWAV(), Headers: headers}
}

func webmUpload() testutil.Upload {
	return testutil.Upload{
		Field: "audio", FileName: "clip.webm", MimeType: "audio/webm;codecs=opus", Data: testutil.WebM(),
		Headers: map[string]string{"X-User-Id": "u1"},
	}
}

func expectTrace(t *testing.T, got Trace, want ...State) {
	t.Helper()
	if !slices.Equal(got, Trace(want)) {
		t.Errorf("trace = %s\nwant    %s", got, Trace(want))
	}
}

func expectCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestRun_PassThroughRecords(t *testing.T) {
	f := newFixture(t, staticResolver{}, nil)
	req := wavUpload(map[string]string{"X-User-Id": "u1", "Idempotency-Key": "attempt-1"}).Request(t, "/api/stt/transcribe")

	res, err := f.p.Run(context.Background(), req, "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transcript != "hello world" || res.Identity != "u1" {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Usage == nil || *res.Usage != (usage.Usage{Used: 1, Limit: -1}) {
		t.Errorf("unexpected usage %+v", res.Usage)
	}
	expectTrace(t, res.Trace, Received, Validated, PassThrough, Transcribing, Recorded, Cleaned, Responded)

	sent := f.provider.Requests()
	if len(sent) != 1 || sent[0].FileName != "clip.wav" || sent[0].MimeType != "audio/wav" {
		t.Errorf("provider saw %+v", sent)
	}
	f.assertCleaned(t)
}

func TestRun_ReplayIsAlreadyRecorded(t *testing.T) {
	f := newFixture(t, staticResolver{}, nil)
	headers := map[string]string{"X-User-Id": "u1", "Idempotency-Key": "same"}

	for i := 0; i < 2; i++ {
		res, err := f.p.Run(context.Background(), wavUpload(headers).Request(t, "/api/stt/transcribe"), "req")
		if err != nil {
			t.Fatal(err)
		}
		if res.Usage == nil || res.Usage.Used != 1 {
			t.Errorf("run %d: expected used=1, got %+v", i, res.Usage)
		}
	}
	f.assertCleaned(t)
}

func TestRun_ConvertsBrowserAudio(t *testing.T) {
	toolDir := t.TempDir()
	tool := testutil.CopyingTranscoder(t, toolDir, testutil.SpeechWAV())
	f := newFixture(t, staticResolver{res: toolchain.Resolution{Path: tool, Version: "fake"}}, nil)

	res, err := f.p.Run(context.Background(), webmUpload().Request(t, "/api/stt/transcribe"), "req-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectTrace(t, res.Trace, Received, Validated, Resolving, Transcoding, Verified, Transcribing, Recorded, Cleaned, Responded)

	sent := f.provider.Requests()
	if len(sent) != 1 || sent[0].MimeType != "audio/wav" {
		t.Fatalf("provider should receive converted wav, got %+v", sent)
	}
	f.assertCleaned(t)
}

func TestRun_ToolUnavailable(t *testing.T) {
	f := newFixture(t, staticResolver{res: toolchain.Resolution{Reason: "ffmpeg not found"}}, nil)

	res, err := f.p.Run(context.Background(), webmUpload().Request(t, "/api/stt/transcribe"), "req-3")
	expectCode(t, err, apperrors.ErrCodeSTTUnavailable)
	expectTrace(t, res.Trace, Received, Validated, Resolving, DependencyUnavailable, Cleaned, Responded)
	if len(f.provider.Requests()) != 0 {
		t.Error("provider must not be called")
	}
	f.assertCleaned(t)
}

func TestRun_TranscodeFails(t *testing.T) {
	toolDir := t.TempDir()
	tool := testutil.FakeTranscoder(t, toolDir, `echo "corrupt input" >&2; : > "$out"; exit 1`)
	f := newFixture(t, staticResolver{res: toolchain.Resolution{Path: tool}}, nil)

	res, err := f.p.Run(context.Background(), webmUpload().Request(t, "/api/stt/transcribe"), "req-4")
	expectCode(t, err, apperrors.ErrCodeTranscodeFailed)
	expectTrace(t, res.Trace, Received, Validated, Resolving, Transcoding, TranscodeFailed, Cleaned, Responded)
	f.assertCleaned(t)
}

func TestRun_EmptyUpload(t *testing.T) {
	f := newFixture(t, staticResolver{}, nil)
	u := wavUpload(nil)
	u.Data = nil

	res, err := f.p.Run(context.Background(), u.Request(t, "/api/stt/transcribe"), "req-5")
	expectCode(t, err, apperrors.ErrCodeEmptyAudioUpload)
	expectTrace(t, res.Trace, Received, ValidationFailed, Cleaned, Responded)
	f.assertCleaned(t)
}

func TestRun_BlankTranscriptNotRecorded(t *testing.T) {
	store := usage.NewMemoryStore()
	f := newFixture(t, staticResolver{}, store)
	f.provider.Text = "   "

	res, err := f.p.Run(context.Background(), wavUpload(nil).Request(t, "/api/stt/transcribe"), "req-6")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transcript != "   " || res.Usage != nil {
		t.Errorf("unexpected result %+v", res)
	}
	expectTrace(t, res.Trace, Received, Validated, PassThrough, Transcribing, NotRecorded, Cleaned, Responded)
	if n, _ := store.Count(context.Background(), "u1", time.Now(), usage.KindSTT); n != 0 {
		t.Errorf("blank transcript must not be counted, got %d", n)
	}
	f.assertCleaned(t)
}

func TestRun_ProviderRejectsFormat(t *testing.T) {
	f := newFixture(t, staticResolver{}, nil)
	f.provider.Err = &transcription.Error{Kind: transcription.KindFormatRejected, Provider: "fake", StatusCode: 400, Message: "invalid file format"}

	res, err := f.p.Run(context.Background(), wavUpload(nil).Request(t, "/api/stt/transcribe"), "req-7")
	expectCode(t, err, apperrors.ErrCodeUnsupportedAudioFormat)
	expectTrace(t, res.Trace, Received, Validated, PassThrough, Transcribing, ProviderFailed, Cleaned, Responded)
	f.assertCleaned(t)
}

func TestRun_PanicIsRecovered(t *testing.T) {
	f := newFixture(t, staticResolver{}, nil)
	f.provider.Panic = "provider exploded"

	res, err := f.p.Run(context.Background(), wavUpload(nil).Request(t, "/api/stt/transcribe"), "req-8")
	expectCode(t, err, apperrors.ErrCodeInternal)
	if res.Trace.Outcome() != UnexpectedFailure {
		t.Errorf("expected unexpected_failure, got %s", res.Trace)
	}
	if res.Trace[len(res.Trace)-1] != Responded {
		t.Errorf("trace should end at responded, got %s", res.Trace)
	}
	f.assertCleaned(t)
}

type brokenStore struct{ usage.MemoryStore }

func (*brokenStore) Record(context.Context, usage.Attempt) (bool, error) {
	return false, errors.New("ledger offline")
}

func TestRun_LedgerFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t, staticResolver{}, &brokenStore{})

	res, err := f.p.Run(context.Background(), wavUpload(nil).Request(t, "/api/stt/transcribe"), "req-9")
	if err != nil {
		t.Fatalf("ledger failure must not fail the request: %v", err)
	}
	if res.Transcript != "hello world" || res.Usage != nil {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Trace.Outcome() != NotRecorded {
		t.Errorf("expected not_recorded, got %s", res.Trace)
	}
	f.assertCleaned(t)
}

func TestRun_CanceledContextStillCleans(t *testing.T) {
	f := newFixture(t, staticResolver{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.provider.Err = context.Canceled

	res, err := f.p.Run(ctx, wavUpload(nil).Request(t, "/api/stt/transcribe"), "req-10")
	if err == nil {
		t.Fatal("expected error")
	}
	if !res.Trace.Contains(Cleaned) {
		t.Errorf("cleanup must run, trace %s", res.Trace)
	}
	f.assertCleaned(t)
}

func TestFailureState(t *testing.T) {
	tests := []struct {
		err  error
		want State
	}{
		{apperrors.MissingUserID(), ValidationFailed},
		{apperrors.UploadTooLarge(1024), ValidationFailed},
		{apperrors.STTUnavailable("x"), DependencyUnavailable},
		{apperrors.TranscodeFailed(1, "", ""), TranscodeFailed},
		{apperrors.STTFailed(errors.New("x")), ProviderFailed},
		{apperrors.Internal(errors.New("x")), UnexpectedFailure},
		{errors.New("plain"), UnexpectedFailure},
	}
	for _, tc := range tests {
		if got := failureState(tc.err); got != tc.want {
			t.Errorf("failureState(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
