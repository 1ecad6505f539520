package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/dayflow/internal"
	userDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/user"
)

// CredentialRepository owns the password and reset-code columns of users.
type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// SetResetOTP stores the hashed reset code, or clears it when hash is nil.
func (r *CredentialRepository) SetResetOTP(ctx context.Context, userID int64, hash *string, expiresAt *time.Time) error {
	return r.update(ctx, userID, map[string]interface{}{
		"reset_otp_hash":       hash,
		"reset_otp_expires_at": expiresAt,
	})
}

// UpdatePassword sets a new hash and invalidates any pending reset code.
func (r *CredentialRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.update(ctx, userID, map[string]interface{}{
		"password_hash":        passwordHash,
		"reset_otp_hash":       nil,
		"reset_otp_expires_at": nil,
	})
}

func (r *CredentialRepository) update(ctx context.Context, userID int64, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update credentials for user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}
