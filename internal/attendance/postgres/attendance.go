package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/dayflow/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/attendance"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) EnsureDay(ctx context.Context, userID int64, day time.Time) error {
	row := &attendanceDatamodel.Attendance{
		UserID:   userID,
		Date:     day,
		Status:   string(attendance.StatusAbsent),
		Location: attendance.DefaultLocation,
	}
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("ensure attendance day: %w", err)
	}
	return nil
}

func (r *AttendanceRepository) MarkCheckIn(ctx context.Context, userID int64, day, at time.Time, location string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&attendanceDatamodel.Attendance{}).
		Where("user_id = ? AND date = ? AND check_in IS NULL", userID, day).
		Updates(map[string]interface{}{
			"check_in": at,
			"status":   string(attendance.StatusPresent),
			"location": location,
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark check-in: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *AttendanceRepository) MarkCheckOut(ctx context.Context, a *attendance.Attendance) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&attendanceDatamodel.Attendance{}).
		Where("id = ? AND check_out IS NULL", a.ID).
		Updates(map[string]interface{}{
			"check_out":  a.CheckOut,
			"work_hours": a.WorkHours,
			"status":     string(a.Status),
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark check-out: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *AttendanceRepository) GetByUserAndDay(ctx context.Context, userID int64, day time.Time) (*attendance.Attendance, error) {
	var row attendanceDatamodel.Attendance
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? AND date = ?", userID, day).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendance.ErrNotFound
		}
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return attendance.FromDataModel(&row), nil
}

func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*attendance.Attendance, error) {
	var row attendanceDatamodel.Attendance
	if err := r.db.WithContext(ctx).Preload("User").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendance.ErrNotFound
		}
		return nil, fmt.Errorf("get attendance %d: %w", id, err)
	}
	return attendance.FromDataModel(&row), nil
}

// List returns matching records, newest day first.
func (r *AttendanceRepository) List(ctx context.Context, f attendance.Filter) ([]*attendance.Attendance, error) {
	q := r.db.WithContext(ctx).Preload("User")
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date < ?", *f.To)
	}
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}

	var rows []*attendanceDatamodel.Attendance
	if err := q.Order("date DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return attendance.FromDataModelSlice(rows), nil
}

func (r *AttendanceRepository) Update(ctx context.Context, a *attendance.Attendance) error {
	res := r.db.WithContext(ctx).
		Model(&attendanceDatamodel.Attendance{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"status":      string(a.Status),
			"remarks":     a.Remarks,
			"is_approved": a.IsApproved,
			"approved_by": a.ApprovedBy,
			"work_hours":  a.WorkHours,
		})
	if res.Error != nil {
		return fmt.Errorf("update attendance %d: %w", a.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return attendance.ErrNotFound
	}
	return nil
}

func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&attendanceDatamodel.Attendance{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete attendance %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return attendance.ErrNotFound
	}
	return nil
}
