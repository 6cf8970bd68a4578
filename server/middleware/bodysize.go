package middleware

import (
	"net/http"

	"github.com/kbukum/voiceingest/util"
)

const defaultMaxBodySize = 50 * 1024 * 1024

// BodySizeLimit caps the request body at maxSize ("25MB", "512KB").
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
