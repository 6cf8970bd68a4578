package testutil

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
)

// Upload describes a multipart upload.
type Upload struct {
	Field    string
	FileName string
	MimeType string
	Data     []byte
	Values   map[string]string
	Headers  map[string]string
}

// Body encodes u and returns the body and its Content-Type.
func (u Upload) Body(t testing.TB) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range u.Values {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if u.Field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+u.Field+`"; filename="`+u.FileName+`"`)
		if u.MimeType != "" {
			h.Set("Content-Type", u.MimeType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(u.Data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, w.FormDataContentType()
}

// Request builds a POST to target carrying u.
func (u Upload) Request(t testing.TB, target string) *http.Request {
	t.Helper()
	body, contentType := u.Body(t)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	for k, v := range u.Headers {
		req.Header.Set(k, v)
	}
	return req
}

// ListDir returns the names in dir.
func ListDir(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
