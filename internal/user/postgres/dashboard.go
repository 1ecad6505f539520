package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/dayflow/internal/user"
)

// DashboardRepository answers the dashboard aggregates with plain SQL. The
// queries stay portable so tests can run them on SQLite.
type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) AttendanceByStatus(ctx context.Context, userID int64, from, to time.Time) ([]user.StatusCount, error) {
	query := r.db.Rebind(`
SELECT status, COUNT(*) AS n
FROM attendances
WHERE user_id = ? AND date >= ? AND date < ?
GROUP BY status`)

	var rows []user.StatusCount
	if err := r.db.SelectContext(ctx, &rows, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("attendance by status: %w", err)
	}
	return rows, nil
}

func (r *DashboardRepository) DailyAttendance(ctx context.Context, userID int64, from, to time.Time) ([]user.DayStatus, error) {
	query := r.db.Rebind(`
SELECT date, status
FROM attendances
WHERE user_id = ? AND date >= ? AND date < ?
ORDER BY date ASC`)

	var rows []user.DayStatus
	if err := r.db.SelectContext(ctx, &rows, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("daily attendance: %w", err)
	}
	return rows, nil
}

func (r *DashboardRepository) PendingLeaves(ctx context.Context, userID int64) (int, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(*) FROM leaves WHERE user_id = ? AND status = ?`)
	if err := r.db.GetContext(ctx, &n, query, userID, "pending"); err != nil {
		return 0, fmt.Errorf("pending leaves: %w", err)
	}
	return n, nil
}

func (r *DashboardRepository) Payslips(ctx context.Context, userID int64) (int, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(*) FROM payrolls WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &n, query, userID); err != nil {
		return 0, fmt.Errorf("payslips: %w", err)
	}
	return n, nil
}
