package usage

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Idempotency headers, in lookup order.
const (
	HeaderIdempotencyKey  = "Idempotency-Key"
	HeaderXIdempotencyKey = "X-Idempotency-Key"
)

// IdempotencyKey returns the client-supplied key, or a fresh UUID when the
// request carries none.
func IdempotencyKey(r *http.Request) string {
	for _, h := range []string{HeaderIdempotencyKey, HeaderXIdempotencyKey} {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return v
		}
	}
	return uuid.NewString()
}
