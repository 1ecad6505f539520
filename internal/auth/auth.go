package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/dayflow/internal/core/role"
	"github.com/frahmantamala/dayflow/internal/user"
)

// AuthResponse is returned by register, login and password reset.
type AuthResponse struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  role.Role `json:"role"`
	Token string    `json:"token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenGenerator issues and verifies access tokens.
type TokenGenerator interface {
	GenerateToken(userID int64, r role.Role) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

func newAuthResponse(u *user.User, token string) *AuthResponse {
	return &AuthResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Token: token,
	}
}
