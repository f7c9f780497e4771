package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "propagates caller id", incoming: "build-42", keep: true},
		{name: "mints when missing", incoming: ""},
		{name: "mints when too long", incoming: strings.Repeat("a", 65)},
		{name: "mints on control characters", incoming: "bad\nid"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header["X-Request-Id"] = []string{tc.incoming}
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Header().Get("X-Request-ID") != seen {
				t.Fatalf("header %q != context %q", rec.Header().Get("X-Request-ID"), seen)
			}
			if tc.keep {
				if seen != tc.incoming {
					t.Fatalf("id = %q, want %q", seen, tc.incoming)
				}
				return
			}
			if _, err := uuid.Parse(seen); err != nil {
				t.Fatalf("minted id %q is not a uuid: %v", seen, err)
			}
		})
	}
}
