package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/dayflow/internal"
	userDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/user"
	"github.com/frahmantamala/dayflow/internal/core/role"
	"github.com/frahmantamala/dayflow/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u and fills its id and timestamps. A duplicate email maps to
// internal.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	row := user.ToDataModel(u)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = row.ID
	u.CreatedAt = row.CreatedAt
	u.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", user.NormalizeEmail(email)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("email = ?", user.NormalizeEmail(email)).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, update user.ProfileUpdate) error {
	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Email != nil {
		fields["email"] = user.NormalizeEmail(*update.Email)
	}
	if update.Department != nil {
		fields["department"] = *update.Department
	}
	if update.Designation != nil {
		fields["designation"] = *update.Designation
	}
	if update.Phone != nil {
		fields["phone"] = *update.Phone
	}
	if update.Address != nil {
		fields["address"] = *update.Address
	}
	if len(fields) == 0 {
		return nil
	}
	return r.updateFields(ctx, id, fields)
}

func (r *UserRepository) SetProfileImage(ctx context.Context, id int64, path string) error {
	return r.updateFields(ctx, id, map[string]interface{}{"profile_image": path})
}

func (r *UserRepository) updateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return internal.ErrUserExists
		}
		return fmt.Errorf("update user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ListNonAdmin(ctx context.Context) ([]*user.User, error) {
	var rows []*userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("role <> ?", role.Admin.String()).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return user.FromDataModelSlice(rows), nil
}

func (r *UserRepository) ListActiveEmployees(ctx context.Context) ([]*user.User, error) {
	var rows []*userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND status = ?", role.Employee.String(), user.StatusActive).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	return user.FromDataModelSlice(rows), nil
}

// Recipient resolves the mailbox used for notifications.
func (r *UserRepository) Recipient(ctx context.Context, userID int64) (string, string, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return u.Name, u.Email, nil
}
