package internal

import (
	"context"
	"time"

	"github.com/frahmantamala/dayflow/internal/core/role"
)

type ctxKey string

const ContextUserKey ctxKey = "currentUser"

// CurrentUser is the authenticated caller attached to the request context by
// the auth middleware.
type CurrentUser struct {
	ID         int64
	Name       string
	Email      string
	EmployeeID string
	Role       role.Role
}

func (u *CurrentUser) IsAdmin() bool {
	return u != nil && u.Role.IsAdmin()
}

func UserFromContext(ctx context.Context) (*CurrentUser, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(ContextUserKey).(*CurrentUser)
	return u, ok && u != nil
}

func ContextWithUser(ctx context.Context, u *CurrentUser) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
