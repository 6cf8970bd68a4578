package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kbukum/voiceingest/intake"
	"github.com/kbukum/voiceingest/pipeline"
	"github.com/kbukum/voiceingest/quota"
	"github.com/kbukum/voiceingest/server"
	"github.com/kbukum/voiceingest/testutil"
	"github.com/kbukum/voiceingest/toolchain"
	"github.com/kbukum/voiceingest/transcode"
	"github.com/kbukum/voiceingest/transcription"
	"github.com/kbukum/voiceingest/usage"
)

const transcribePath = "/api/stt/transcribe"

var identity = intake.IdentityNames{Header: "X-User-Id", Field: "userId", Query: "userId", FallbackField: "user_id"}

type resolverFunc func() toolchain.Resolution

func (f resolverFunc) Resolve(context.Context) toolchain.Resolution { return f() }

type harness struct {
	handler  http.Handler
	pipeline *pipeline.Pipeline
	provider *testutil.Provider
	tempDir  string
}

func newHarness(t *testing.T, resolution toolchain.Resolution) *harness {
	t.Helper()
	tiers, err := quota.NewStaticTiers(quota.Config{
		DefaultTier: "free",
		Tiers: map[string]map[string]int64{
			"free": {usage.KindSTT: 20},
			"pro":  {usage.KindSTT: quota.Unlimited},
		},
		Identities: map[string]string{"u1": "pro"},
	})
	if err != nil {
		t.Fatal(err)
	}
	ledger := usage.NewLedger(usage.NewMemoryStore(), tiers, nil)

	dir := t.TempDir()
	provider := &testutil.Provider{Text: "hello world"}
	p, err := pipeline.New(
		intake.New(intake.Config{TempDir: dir, Identity: identity}, nil),
		transcode.NewEngine(transcode.Config{Timeout: 5 * time.Second}, resolverFunc(func() toolchain.Resolution { return resolution }), nil),
		transcription.NewClient(provider, transcription.Config{}, nil),
		ledger,
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}

	srv := server.New(server.Config{}, nil)
	srv.ApplyMiddleware()
	NewHandler(p, ledger, identity, nil).Register(srv.GinEngine())
	return &harness{handler: srv.Handler(), pipeline: p, provider: provider, tempDir: dir}
}

func (h *harness) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %q", rr.Body.String())
	}
	return rr, body
}

func (h *harness) assertNoTempFiles(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.pipeline.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if left := testutil.ListDir(t, h.tempDir); len(left) != 0 {
		t.Errorf("temporary files left behind: %v", left)
	}
}

func wav(user string) testutil.Upload {
	return testutil.Upload{
		Field: "audio", FileName: "clip.wav", MimeType: "audio/wav", Data: testutil.SpeechWAV(),
		Headers: map[string]string{"X-User-Id": user},
	}
}

// A zero-byte upload is rejected with its size.
func TestTranscribe_EmptyUpload(t *testing.T) {
	h := newHarness(t, toolchain.Resolution{})
	u := wav("u1")
	u.Data = []byte{}

	rr, body := h.do(t, u.Request(t, transcribePath))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if body["error"] != "empty_audio_upload" || body["size"] != float64(0) {
		t.Errorf("unexpected body %v", body)
	}
	if len(h.provider.Requests()) != 0 {
		t.Error("provider must not be called")
	}
	h.assertNoTempFiles(t)
}

// A WAV upload for an unlimited identity is transcribed and counted.
func TestTranscribe_WAV(t *testing.T) {
	h := newHarness(t, toolchain.Resolution{})

	rr, body := h.do(t, wav("u1").Request(t, transcribePath))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rr.Code, body)
	}
	if body["transcript"] != "hello world" {
		t.Errorf("unexpected transcript %v", body["transcript"])
	}
	u, ok := body["usage"].(map[string]any)
	if !ok || u["used"] != float64(1) || u["limit"] != float64(-1) {
		t.Errorf("unexpected usage %v", body["usage"])
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id")
	}
	h.assertNoTempFiles(t)
}

// Browser audio without a transcoder is a retryable 503.
func TestTranscribe_ToolUnavailable(t *testing.T) {
	h := newHarness(t, toolchain.Resolution{Reason: "ffmpeg not found"})
	u := testutil.Upload{
		Field: "file", FileName: "rec.webm", MimeType: "audio/webm", Data: testutil.WebM(),
		Headers: map[string]string{"X-User-Id": "u1"},
	}

	rr, body := h.do(t, u.Request(t, transcribePath))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if body["error"] != "stt_unavailable" {
		t.Errorf("unexpected body %v", body)
	}
	if len(h.provider.Requests()) != 0 {
		t.Error("provider must not be called")
	}
	h.assertNoTempFiles(t)
}

// An empty transcript is returned but not counted.
func TestTranscribe_EmptyTranscript(t *testing.T) {
	h := newHarness(t, toolchain.Resolution{})
	h.provider.Text = ""

	rr, body := h.do(t, wav("u1").Request(t, transcribePath))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body["transcript"] != "" {
		t.Errorf("unexpected transcript %v", body["transcript"])
	}
	if _, ok := body["usage"]; ok {
		t.Errorf("usage must be omitted, got %v", body["usage"])
	}

	_, got := h.do(t, httptest.NewRequest(http.MethodGet, "/api/stt/usage?userId=u1", http.NoBody))
	if got["used"] != float64(0) {
		t.Errorf("counter must not move, got %v", got)
	}
	h.assertNoTempFiles(t)
}

func TestTranscribe_Errors(t *testing.T) {
	tests := []struct {
		name       string
		upload     testutil.Upload
		providerFn func(*testutil.Provider)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing file",
			upload:     testutil.Upload{Values: map[string]string{"userId": "u1"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "missing_audio_file",
		},
		{
			name:       "missing identity",
			upload:     wav(""),
			wantStatus: http.StatusBadRequest,
			wantCode:   "missing_user_id",
		},
		{
			name:   "provider rejects format",
			upload: wav("u1"),
			providerFn: func(p *testutil.Provider) {
				p.Err = &transcription.Error{Kind: transcription.KindFormatRejected, Provider: "fake", StatusCode: 400, Message: "Invalid file format"}
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "unsupported_audio_format",
		},
		{
			name:       "provider fails",
			upload:     wav("u1"),
			providerFn: func(p *testutil.Provider) { p.Err = errors.New("connection reset") },
			wantStatus: http.StatusInternalServerError,
			wantCode:   "stt_failed",
		},
		{
			name:       "provider panics",
			upload:     wav("u1"),
			providerFn: func(p *testutil.Provider) { p.Panic = "nil map" },
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, toolchain.Resolution{})
			if tc.providerFn != nil {
				tc.providerFn(h.provider)
			}
			rr, body := h.do(t, tc.upload.Request(t, transcribePath))
			if rr.Code != tc.wantStatus || body["error"] != tc.wantCode {
				t.Errorf("expected %d %s, got %d %v", tc.wantStatus, tc.wantCode, rr.Code, body)
			}
			h.assertNoTempFiles(t)
		})
	}
}

func TestTranscribe_IdempotencyKeyReplay(t *testing.T) {
	h := newHarness(t, toolchain.Resolution{})
	for i := 0; i < 2; i++ {
		u := wav("u2")
		u.Headers["Idempotency-Key"] = "retry-1"
		_, body := h.do(t, u.Request(t, transcribePath))
		got, _ := body["usage"].(map[string]any)
		if got["used"] != float64(1) || got["limit"] != float64(20) {
			t.Errorf("attempt %d: unexpected usage %v", i, body["usage"])
		}
	}
}

func TestUsage(t *testing.T) {
	h := newHarness(t, toolchain.Resolution{})
	h.do(t, wav("u2").Request(t, transcribePath))

	req := httptest.NewRequest(http.MethodGet, "/api/stt/usage", http.NoBody)
	req.Header.Set("X-User-Id", "u2")
	rr, body := h.do(t, req)
	if rr.Code != http.StatusOK || body["used"] != float64(1) || body["limit"] != float64(20) {
		t.Errorf("unexpected usage response %d %v", rr.Code, body)
	}

	rr, body = h.do(t, httptest.NewRequest(http.MethodGet, "/api/stt/usage", http.NoBody))
	if rr.Code != http.StatusBadRequest || body["error"] != "missing_user_id" {
		t.Errorf("expected missing_user_id, got %d %v", rr.Code, body)
	}
}
