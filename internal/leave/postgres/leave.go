package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	leaveDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/user"
	"github.com/frahmantamala/dayflow/internal/leave"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(ctx context.Context, l *leave.Leave) error {
	row := leave.ToDataModel(l)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return fmt.Errorf("create leave: %w", err)
	}
	l.ID = row.ID
	l.CreatedAt = row.CreatedAt
	l.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*leave.Leave, error) {
	var row leaveDatamodel.Leave
	if err := r.db.WithContext(ctx).Preload("User").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leave.ErrNotFound
		}
		return nil, fmt.Errorf("get leave %d: %w", id, err)
	}
	return leave.FromDataModel(&row), nil
}

func (r *LeaveRepository) List(ctx context.Context, f leave.Filter) ([]*leave.Leave, error) {
	q := r.db.WithContext(ctx).Preload("User")
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}

	var rows []*leaveDatamodel.Leave
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	return leave.FromDataModelSlice(rows), nil
}

func (r *LeaveRepository) Decide(ctx context.Context, l *leave.Leave, status leave.Status, comment string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": string(status)}
		if comment != "" {
			updates["admin_comment"] = comment
		}

		res := tx.Model(&leaveDatamodel.Leave{}).
			Where("id = ? AND status = ?", l.ID, string(leave.StatusPending)).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("decide leave %d: %w", l.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return leave.ErrAlreadyProcessed
		}

		if status != leave.StatusApproved {
			return nil
		}

		column, err := balanceColumn(l.LeaveType)
		if err != nil {
			return err
		}
		days := l.Days()
		res = tx.Model(&userDatamodel.User{}).
			Where("id = ?", l.UserID).
			Update(column, gorm.Expr("CASE WHEN "+column+" > ? THEN "+column+" - ? ELSE 0 END", days, days))
		if res.Error != nil {
			return fmt.Errorf("decrement %s for user %d: %w", column, l.UserID, res.Error)
		}
		return nil
	})
}

func (r *LeaveRepository) DeletePending(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, string(leave.StatusPending)).
		Delete(&leaveDatamodel.Leave{})
	if res.Error != nil {
		return fmt.Errorf("delete leave %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return leave.ErrNotDeletable
	}
	return nil
}

// balanceColumn maps a leave type onto its users column.
func balanceColumn(t leave.Type) (string, error) {
	switch t {
	case leave.TypePaid:
		return "leave_balance_paid", nil
	case leave.TypeSick:
		return "leave_balance_sick", nil
	case leave.TypeCasual:
		return "leave_balance_casual", nil
	case leave.TypeUnpaid:
		return "leave_balance_unpaid", nil
	default:
		return "", fmt.Errorf("unknown leave type %q", t)
	}
}
