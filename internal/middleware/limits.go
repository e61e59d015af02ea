package middleware

import (
	"net/http"
)

const (
	KB = 1024

	// DefaultMaxBodySize fits any address request with room to spare.
	DefaultMaxBodySize = 64 * KB
)

// MaxBodySize rejects bodies larger than maxBytes with 413. Zero means
// DefaultMaxBodySize.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondTooLarge(w, r, "Request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
