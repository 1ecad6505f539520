package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/core/role"
	"github.com/frahmantamala/dayflow/internal/transport"
)

// Authorize admits callers whose role is one of allowed. It must run after
// the authentication middleware has put the user in the context.
func Authorize(logger *slog.Logger, allowed ...role.Role) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				base.HandleServiceError(w, internal.ErrMissingToken)
				return
			}

			if !user.Role.In(allowed...) {
				base.Logger.Warn("access denied: role not allowed",
					"user_id", user.ID,
					"role", user.Role,
					"allowed", allowed)
				base.HandleServiceError(w, internal.NewForbiddenError(
					fmt.Sprintf("User role %s is not authorized to access this route", user.Role),
					internal.ErrCodeRoleNotAllowed))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
