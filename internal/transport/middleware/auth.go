package middleware

import (
	"net/http"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/pkg/logger"
)

// UserContext tags the request logger with the authenticated user.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if user, ok := internal.UserFromContext(ctx); ok {
			ctx = logger.With(ctx, "userID", user.ID, "role", user.Role)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
