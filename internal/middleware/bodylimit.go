package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mindhaven/companion-server-go/internal/config"
)

// BodyLimitMiddleware caps request bodies on the JSON routes. The websocket
// route does not pass through here; it enforces its own per-frame ceiling.
type BodyLimitMiddleware struct {
	maxSize int64
}

// NewBodyLimitMiddleware builds the middleware. A non-positive maxSize
// selects config.MaxRequestBodyBytes.
func NewBodyLimitMiddleware(maxSize int64) *BodyLimitMiddleware {
	if maxSize <= 0 {
		maxSize = config.MaxRequestBodyBytes
	}
	return &BodyLimitMiddleware{maxSize: maxSize}
}

func (m *BodyLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Declared length over the cap is rejected up front; bodies without
		// one are still bounded by the MaxBytesReader below.
		if r.ContentLength > m.maxSize {
			log.Warn().
				Str("path", r.URL.Path).
				Int64("contentLength", r.ContentLength).
				Int64("limit", m.maxSize).
				Msg("rejecting oversized request body")
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": "Request body too large",
			})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, m.maxSize)
		next.ServeHTTP(w, r)
	})
}
