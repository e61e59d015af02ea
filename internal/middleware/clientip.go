package middleware

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP extracts the client IP, preferring X-Forwarded-For and
// X-Real-IP over RemoteAddr. Those headers can be spoofed unless a proxy
// sets them.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
