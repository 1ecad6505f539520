package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/dayflow/internal/transport"
)

// RecoveryMiddleware provides panic recovery with detailed logging
func RecoveryMiddleware(logger *slog.Logger, exposeErrors bool) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					env := transport.Envelope{Success: false, Message: "Server error"}
					if exposeErrors {
						env.Error = fmt.Sprintf("panic: %v", err)
					}
					base.WriteJSON(w, http.StatusInternalServerError, env)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
