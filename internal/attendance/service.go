package attendance

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/core/clock"
	"github.com/frahmantamala/dayflow/internal/core/common/validation"
)

// Filter narrows a listing; nil fields are ignored. From is inclusive, To
// exclusive.
type Filter struct {
	UserID *int64
	From   *time.Time
	To     *time.Time
	Status *Status
}

type RepositoryAPI interface {
	// EnsureDay inserts an absent record for (userID, day) unless one exists.
	EnsureDay(ctx context.Context, userID int64, day time.Time) error
	// MarkCheckIn stamps the check-in if the day has none yet and reports
	// whether it did.
	MarkCheckIn(ctx context.Context, userID int64, day, at time.Time, location string) (bool, error)
	// MarkCheckOut saves the check-out and derived fields if the day has no
	// check-out yet and reports whether it did.
	MarkCheckOut(ctx context.Context, a *Attendance) (bool, error)
	GetByUserAndDay(ctx context.Context, userID int64, day time.Time) (*Attendance, error)
	GetByID(ctx context.Context, id int64) (*Attendance, error)
	List(ctx context.Context, f Filter) ([]*Attendance, error)
	Update(ctx context.Context, a *Attendance) error
	Delete(ctx context.Context, id int64) error
}

var (
	ErrNotFound          = internal.NewNotFoundError("Attendance record not found", internal.ErrCodeAttendanceNotFound)
	ErrAlreadyCheckedIn  = internal.NewValidationError("Already checked in today", internal.ErrCodeAlreadyCheckedIn)
	ErrNoCheckIn         = internal.NewNotFoundError("No check-in record found for today", internal.ErrCodeAttendanceNotFound)
	ErrAlreadyCheckedOut = internal.NewValidationError("Already checked out today", internal.ErrCodeAlreadyCheckedOut)
	ErrInvalidMonth      = internal.NewValidationFieldError("month", "month must be between 1 and 12", internal.ErrCodeInvalidDate)
)

type Service struct {
	repo   RepositoryAPI
	now    clock.Func
	loc    *time.Location
	logger *slog.Logger
}

// NewService builds the attendance service. loc decides which calendar day
// "today" is.
func NewService(repo RepositoryAPI, now clock.Func, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:   repo,
		now:    now,
		loc:    loc,
		logger: logger,
	}
}

func (s *Service) CheckIn(ctx context.Context, userID int64, dto CheckInDTO) (*Attendance, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	now := s.now.Now()
	today := clock.Day(now, s.loc)
	location := strings.TrimSpace(dto.Location)
	if location == "" {
		location = DefaultLocation
	}

	if err := s.repo.EnsureDay(ctx, userID, today); err != nil {
		s.logger.Error("failed to create attendance record", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("Failed to check in", err)
	}

	marked, err := s.repo.MarkCheckIn(ctx, userID, today, now.UTC(), location)
	if err != nil {
		s.logger.Error("failed to check in", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("Failed to check in", err)
	}
	if !marked {
		return nil, ErrAlreadyCheckedIn
	}

	a, err := s.repo.GetByUserAndDay(ctx, userID, today)
	if err != nil {
		return nil, internal.NewInternalError("Failed to check in", err)
	}

	s.logger.Info("checked in", "user_id", userID, "date", today.Format("2006-01-02"), "location", location)
	return a, nil
}

func (s *Service) CheckOut(ctx context.Context, userID int64) (*Attendance, error) {
	now := s.now.Now()
	today := clock.Day(now, s.loc)

	a, err := s.repo.GetByUserAndDay(ctx, userID, today)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoCheckIn
		}
		return nil, internal.NewInternalError("Failed to check out", err)
	}
	if a.CheckIn == nil {
		return nil, ErrNoCheckIn
	}
	if a.CheckOut != nil {
		return nil, ErrAlreadyCheckedOut
	}

	out := now.UTC()
	a.CheckOut = &out
	a.Recompute()

	marked, err := s.repo.MarkCheckOut(ctx, a)
	if err != nil {
		s.logger.Error("failed to check out", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("Failed to check out", err)
	}
	if !marked {
		return nil, ErrAlreadyCheckedOut
	}

	s.logger.Info("checked out", "user_id", userID, "work_hours", a.WorkHours, "status", a.Status)
	return a, nil
}

// GetTodayAttendance returns nil when the caller has no record today.
func (s *Service) GetTodayAttendance(ctx context.Context, userID int64) (*Attendance, error) {
	a, err := s.repo.GetByUserAndDay(ctx, userID, clock.Day(s.now.Now(), s.loc))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, internal.NewInternalError("Failed to fetch today's attendance", err)
	}
	return a, nil
}

func (s *Service) GetMyAttendance(ctx context.Context, userID int64, month, year *int) ([]*Attendance, Stats, error) {
	f := Filter{UserID: &userID}
	if err := applyPeriod(&f, month, year); err != nil {
		return nil, Stats{}, err
	}

	records, err := s.repo.List(ctx, f)
	if err != nil {
		s.logger.Error("failed to list attendance", "user_id", userID, "error", err)
		return nil, Stats{}, internal.NewInternalError("Failed to fetch attendance", err)
	}
	return records, ComputeStats(records), nil
}

func (s *Service) GetAllAttendance(ctx context.Context, q ListQuery) ([]*Attendance, error) {
	f := Filter{UserID: q.UserID}
	if err := applyPeriod(&f, q.Month, q.Year); err != nil {
		return nil, err
	}
	if q.Status != "" {
		st := Status(q.Status)
		if !st.Valid() {
			return nil, internal.NewValidationFieldError("status", "status must be one of: present, absent, leave, half-day", internal.ErrCodeInvalidStatus)
		}
		f.Status = &st
	}

	records, err := s.repo.List(ctx, f)
	if err != nil {
		s.logger.Error("failed to list attendance", "error", err)
		return nil, internal.NewInternalError("Failed to fetch attendance records", err)
	}
	return records, nil
}

// UpdateAttendance applies an admin correction. Setting isApproved records
// the caller as approver.
func (s *Service) UpdateAttendance(ctx context.Context, actor *internal.CurrentUser, id int64, dto UpdateAttendanceDTO) (*Attendance, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "Failed to update attendance")
	}

	if dto.Status != nil {
		a.Status = Status(*dto.Status)
	}
	if dto.Remarks != nil {
		a.Remarks = *dto.Remarks
	}
	if dto.IsApproved != nil {
		a.IsApproved = *dto.IsApproved
		approver := actor.ID
		a.ApprovedBy = &approver
	}
	a.Recompute()

	if err := s.repo.Update(ctx, a); err != nil {
		s.logger.Error("failed to update attendance", "attendance_id", id, "error", err)
		return nil, s.lookupError(err, "Failed to update attendance")
	}

	s.logger.Info("attendance updated", "attendance_id", id, "by", actor.ID, "status", a.Status)

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "Failed to update attendance")
	}
	return updated, nil
}

func (s *Service) DeleteAttendance(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.lookupError(err, "Failed to delete attendance")
	}
	s.logger.Info("attendance deleted", "attendance_id", id)
	return nil
}

func (s *Service) lookupError(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return internal.NewInternalError(msg, err)
}

func applyPeriod(f *Filter, month, year *int) error {
	if month == nil || year == nil {
		return nil
	}
	if *month < 1 || *month > 12 {
		return ErrInvalidMonth
	}
	from, to := clock.MonthRange(*month, *year)
	f.From, f.To = &from, &to
	return nil
}
