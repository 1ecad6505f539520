package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/core/clock"
	"github.com/frahmantamala/dayflow/internal/core/role"
)

type JWTTokenGenerator struct {
	secret []byte
	ttl    time.Duration
	now    clock.Func
}

// NewJWTTokenGenerator creates an HS256 token generator.
func NewJWTTokenGenerator(secret string, ttl time.Duration, now clock.Func) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

func (j *JWTTokenGenerator) GenerateToken(userID int64, r role.Role) (string, error) {
	issuedAt := j.now.Now()

	claims := &Claims{
		UserID: userID,
		Role:   r.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken returns internal.ErrTokenExpired for expired tokens and
// internal.ErrInvalidToken for anything else that does not verify.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now.Now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired.WithCause(err)
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
