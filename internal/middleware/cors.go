package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	corsAllowMethods   = "GET, POST, OPTIONS"
	defaultCORSMaxAge  = time.Hour
	defaultAllowHeader = "Content-Type, X-Request-ID"
)

// CORSOptions configures the CORS shim. An empty AllowedOrigins, or one
// containing "*", allows every origin.
type CORSOptions struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// CORS answers preflight requests itself and decorates every other response
// with the origin headers. Preflight never reaches next, so it stays
// responsive while a build holds the admission gate.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	anyOrigin := len(opts.AllowedOrigins) == 0
	allow := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, origin := range opts.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			anyOrigin = true
		}
		allow[origin] = struct{}{}
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = defaultCORSMaxAge
	}
	maxAgeValue := strconv.Itoa(int(maxAge / time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case anyOrigin:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "":
				if _, ok := allow[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
				}
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				headers := r.Header.Get("Access-Control-Request-Headers")
				if headers == "" {
					headers = defaultAllowHeader
				}
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAgeValue)
				w.Header().Set("Allow", corsAllowMethods)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
