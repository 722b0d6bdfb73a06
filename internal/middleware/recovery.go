package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/authgate/authgate/internal/observability"
)

// Recovery returns a middleware that recovers from panics, logs the stack
// and answers 500 so a single bad request cannot take the process down.
func Recovery(logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						observability.String("path", r.URL.Path),
						observability.String("method", r.Method),
						observability.Any("error", err),
						observability.String("stack", string(debug.Stack())),
					)

					GetHTTPMetrics().panicsRecovered.Inc()

					w.Header().Set(HeaderContentType, ContentTypeJSON)
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = io.WriteString(w, ErrInternalServer)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
