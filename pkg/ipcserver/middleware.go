package ipcserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// withLogging wraps next with a request-scoped log line tagged with a
// generated request ID, the same per-unit id pattern the rest of the
// daemon uses when it needs to name an otherwise anonymous resource.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		next.ServeHTTP(w, r)

		s.log.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("ipc request")
	})
}
