package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"perf360/internal/platform/requestctx"
)

// RequestID honors an inbound X-Request-ID when present so ids survive
// proxy hops, otherwise generates one. The id is echoed on the response and
// threaded through the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), id)))
	})
}
