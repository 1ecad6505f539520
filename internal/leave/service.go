package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/core/common/validation"
	"github.com/frahmantamala/dayflow/internal/core/events"
)

// Filter narrows a listing; nil fields are ignored.
type Filter struct {
	UserID *int64
	Status *Status
}

type RepositoryAPI interface {
	Create(ctx context.Context, l *Leave) error
	GetByID(ctx context.Context, id int64) (*Leave, error)
	// List returns matching leaves, newest application first.
	List(ctx context.Context, f Filter) ([]*Leave, error)
	// Decide moves a pending leave to status and, for an approval, takes
	// its days off the owner's balance, in one transaction. It returns
	// ErrAlreadyProcessed when the leave is no longer pending.
	Decide(ctx context.Context, l *Leave, status Status, comment string) error
	// DeletePending removes the leave if it is still pending.
	DeletePending(ctx context.Context, id int64) error
}

var (
	ErrNotFound         = internal.NewNotFoundError("Leave application not found", internal.ErrCodeLeaveNotFound)
	ErrAlreadyProcessed = internal.NewValidationError("Leave application has already been processed", internal.ErrCodeLeaveProcessed)
	ErrMissingFields    = internal.NewValidationError("Please provide all required fields", internal.ErrCodeValidationFailed)
	ErrDateOrder        = internal.NewValidationFieldError("startDate", "Start date must be before end date", internal.ErrCodeInvalidDate)
	ErrInvalidDecision  = internal.NewValidationError("Invalid status. Must be approved or rejected", internal.ErrCodeInvalidStatus)
	ErrDeleteForbidden  = internal.NewForbiddenError("Not authorized to delete this leave", internal.ErrCodeUnauthorizedAccess)
	ErrNotDeletable     = internal.NewValidationError("Cannot delete approved or rejected leaves", internal.ErrCodeLeaveProcessed)
)

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService builds the leave service. publisher may be nil, in which case
// status changes are not announced.
func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) ApplyLeave(ctx context.Context, userID int64, dto ApplyLeaveDTO) (*Leave, error) {
	dto.Reason = strings.TrimSpace(dto.Reason)
	if dto.missingFields() {
		return nil, ErrMissingFields
	}
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	start, _ := validation.ParseDay(dto.StartDate)
	end, _ := validation.ParseDay(dto.EndDate)
	if start.After(end) {
		return nil, ErrDateOrder
	}

	l := &Leave{
		UserID:    userID,
		LeaveType: Type(dto.LeaveType),
		StartDate: start,
		EndDate:   end,
		Reason:    dto.Reason,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("failed to create leave", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("Failed to apply for leave", err)
	}

	created, err := s.repo.GetByID(ctx, l.ID)
	if err != nil {
		return nil, s.lookupError(err, "Failed to apply for leave")
	}

	s.logger.Info("leave applied", "leave_id", created.ID, "user_id", userID, "type", created.LeaveType, "days", created.Days())
	return created, nil
}

func (s *Service) GetMyLeaves(ctx context.Context, userID int64) ([]*Leave, error) {
	leaves, err := s.repo.List(ctx, Filter{UserID: &userID})
	if err != nil {
		s.logger.Error("failed to list leaves", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("Failed to fetch leaves", err)
	}
	return leaves, nil
}

func (s *Service) GetAllLeaves(ctx context.Context, status string) ([]*Leave, error) {
	var f Filter
	if status != "" {
		st := Status(status)
		if !st.Valid() {
			return nil, internal.NewValidationFieldError("status", "status must be one of: pending, approved, rejected", internal.ErrCodeInvalidStatus)
		}
		f.Status = &st
	}

	leaves, err := s.repo.List(ctx, f)
	if err != nil {
		s.logger.Error("failed to list leaves", "error", err)
		return nil, internal.NewInternalError("Failed to fetch leaves", err)
	}
	return leaves, nil
}

// UpdateLeaveStatus approves or rejects a pending leave.
func (s *Service) UpdateLeaveStatus(ctx context.Context, actor *internal.CurrentUser, id int64, dto UpdateStatusDTO) (*Leave, error) {
	status := Status(dto.Status)
	if !status.IsDecision() {
		return nil, ErrInvalidDecision
	}
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "Failed to update leave status")
	}
	if !l.IsPending() {
		return nil, ErrAlreadyProcessed
	}

	comment := strings.TrimSpace(dto.AdminComment)
	if err := s.repo.Decide(ctx, l, status, comment); err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			return nil, ErrAlreadyProcessed
		}
		s.logger.Error("failed to decide leave", "leave_id", id, "error", err)
		return nil, s.lookupError(err, "Failed to update leave status")
	}

	s.logger.Info("leave decided", "leave_id", id, "status", status, "by", actor.ID, "days", l.Days())

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "Failed to update leave status")
	}

	s.announce(ctx, updated, actor.ID)
	return updated, nil
}

func (s *Service) DeleteLeave(ctx context.Context, actor *internal.CurrentUser, id int64) error {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.lookupError(err, "Failed to delete leave")
	}
	if l.UserID != actor.ID && !actor.IsAdmin() {
		return ErrDeleteForbidden
	}
	if !l.IsPending() {
		return ErrNotDeletable
	}

	if err := s.repo.DeletePending(ctx, id); err != nil {
		if errors.Is(err, ErrNotDeletable) {
			return ErrNotDeletable
		}
		return s.lookupError(err, "Failed to delete leave")
	}

	s.logger.Info("leave deleted", "leave_id", id, "by", actor.ID)
	return nil
}

func (s *Service) announce(ctx context.Context, l *Leave, decidedBy int64) {
	if s.publisher == nil {
		return
	}
	event := events.NewLeaveStatusChangedEvent(l.ID, l.UserID, string(l.LeaveType), l.StartDate, l.EndDate,
		string(l.Status), l.AdminComment, decidedBy)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish leave event", "leave_id", l.ID, "error", err)
	}
}

func (s *Service) lookupError(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return internal.NewInternalError(msg, err)
}

// DecisionMessage is the confirmation returned for a decided leave.
func DecisionMessage(status Status) string {
	return fmt.Sprintf("Leave %s successfully", status)
}
