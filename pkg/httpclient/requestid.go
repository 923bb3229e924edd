package httpclient

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID returns a middleware that stamps every outbound request with an
// X-Request-ID header so client and server logs can be correlated. A header
// already set by the caller is left untouched; otherwise a new UUID v4 is
// generated per attempt.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("X-Request-ID") == "" {
				// Clone before mutating: RoundTrippers must not modify the
				// caller's request.
				r = r.Clone(r.Context())
				r.Header.Set("X-Request-ID", uuid.New().String())
			}
			return next.RoundTrip(r)
		})
	}
}
