package user

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/core/clock"
)

type RepositoryAPI interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) error
	SetProfileImage(ctx context.Context, id int64, path string) error
	ListNonAdmin(ctx context.Context) ([]*User, error)
	ListActiveEmployees(ctx context.Context) ([]*User, error)
}

// StatusCount is one row of a per-status attendance aggregate.
type StatusCount struct {
	Status string `db:"status"`
	Count  int    `db:"n"`
}

// DayStatus is the attendance status recorded for one calendar day.
type DayStatus struct {
	Date   time.Time `db:"date"`
	Status string    `db:"status"`
}

// DashboardReader is the read model behind GET /users/dashboard.
type DashboardReader interface {
	AttendanceByStatus(ctx context.Context, userID int64, from, to time.Time) ([]StatusCount, error)
	DailyAttendance(ctx context.Context, userID int64, from, to time.Time) ([]DayStatus, error)
	PendingLeaves(ctx context.Context, userID int64) (int, error)
	Payslips(ctx context.Context, userID int64) (int, error)
}

type Service struct {
	repo      RepositoryAPI
	dashboard DashboardReader
	now       clock.Func
	loc       *time.Location
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, dashboard DashboardReader, now clock.Func, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:      repo,
		dashboard: dashboard,
		now:       now,
		loc:       loc,
		logger:    logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetAllUsers lists everyone except administrators.
func (s *Service) GetAllUsers(ctx context.Context) ([]*User, error) {
	users, err := s.repo.ListNonAdmin(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("Failed to fetch users", err)
	}
	return users, nil
}

const dashboardDays = 7

func (s *Service) GetDashboardStats(ctx context.Context, userID int64) (*DashboardStats, error) {
	today := clock.Day(s.now.Now(), s.loc)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	counts, err := s.dashboard.AttendanceByStatus(ctx, userID, monthStart, tomorrow)
	if err != nil {
		return nil, s.dashboardError(userID, err)
	}

	pending, err := s.dashboard.PendingLeaves(ctx, userID)
	if err != nil {
		return nil, s.dashboardError(userID, err)
	}

	payslips, err := s.dashboard.Payslips(ctx, userID)
	if err != nil {
		return nil, s.dashboardError(userID, err)
	}

	weekStart := today.AddDate(0, 0, -(dashboardDays - 1))
	days, err := s.dashboard.DailyAttendance(ctx, userID, weekStart, tomorrow)
	if err != nil {
		return nil, s.dashboardError(userID, err)
	}

	return &DashboardStats{
		Attendance:     AttendanceRate(counts),
		PendingLeaves:  pending,
		Payslips:       payslips,
		AttendanceData: WeeklyAttendance(weekStart, days),
	}, nil
}

func (s *Service) dashboardError(userID int64, err error) error {
	s.logger.Error("failed to compute dashboard stats", "user_id", userID, "error", err)
	return internal.NewInternalError("Failed to fetch dashboard stats", err)
}

// AttendanceRate is the share of recorded days the user attended, half days
// included, formatted as a whole percentage.
func AttendanceRate(counts []StatusCount) string {
	total, attended := 0, 0
	for _, c := range counts {
		total += c.Count
		if c.Status == "present" || c.Status == "half-day" {
			attended += c.Count
		}
	}
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(math.Round(float64(attended)*100/float64(total))))
}

// WeeklyAttendance lays records onto the dashboardDays days starting at
// start. Days without a record count as absent.
func WeeklyAttendance(start time.Time, days []DayStatus) []DayAttendance {
	byDay := make(map[string]string, len(days))
	for _, d := range days {
		byDay[d.Date.UTC().Format("2006-01-02")] = d.Status
	}

	out := make([]DayAttendance, 0, dashboardDays)
	for i := 0; i < dashboardDays; i++ {
		day := start.AddDate(0, 0, i)
		key := day.Format("2006-01-02")
		entry := DayAttendance{Name: day.Weekday().String()[:3], Date: key}
		switch byDay[key] {
		case "present":
			entry.Present = 1
		case "half-day":
			entry.HalfDay = 1
		case "leave":
			entry.Leave = 1
		default:
			entry.Absent = 1
		}
		out = append(out, entry)
	}
	return out
}
