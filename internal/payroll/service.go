package payroll

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/core/clock"
	"github.com/frahmantamala/dayflow/internal/core/common/validation"
	"github.com/frahmantamala/dayflow/internal/core/datamodel/compensation"
	"github.com/frahmantamala/dayflow/internal/core/events"
	"github.com/frahmantamala/dayflow/internal/user"
)

// Filter narrows a listing; nil fields are ignored.
type Filter struct {
	UserID *int64
	Month  *int
	Year   *int
	Status *Status
}

type RepositoryAPI interface {
	// Create inserts p unless the user already has a payroll for the
	// period, in which case it returns ErrAlreadyExists.
	Create(ctx context.Context, p *Payroll) error
	GetByID(ctx context.Context, id int64) (*Payroll, error)
	// List returns matching payrolls, latest period first.
	List(ctx context.Context, f Filter) ([]*Payroll, error)
	Update(ctx context.Context, p *Payroll) error
	Delete(ctx context.Context, id int64) error
}

// Employees is the part of the user store payroll reads.
type Employees interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	ListActiveEmployees(ctx context.Context) ([]*user.User, error)
}

var (
	ErrNotFound       = internal.NewNotFoundError("Payroll record not found", internal.ErrCodePayrollNotFound)
	ErrAlreadyExists  = internal.NewConflictError("Payroll already exists for this month", internal.ErrCodePayrollExists)
	ErrSlipForbidden  = internal.NewForbiddenError("Not authorized to view this payroll", internal.ErrCodeUnauthorizedAccess)
	ErrPeriodRequired = internal.NewValidationError("Please provide month and year", internal.ErrCodeValidationFailed)
	ErrInvalidMonth   = internal.NewValidationFieldError("month", "month must be between 1 and 12", internal.ErrCodeInvalidDate)
)

type Service struct {
	repo      RepositoryAPI
	employees Employees
	publisher events.Publisher
	now       clock.Func
	logger    *slog.Logger
}

// NewService builds the payroll service. publisher may be nil.
func NewService(repo RepositoryAPI, employees Employees, publisher events.Publisher, now clock.Func, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		publisher: publisher,
		now:       now,
		logger:    logger,
	}
}

// GetMyPayroll filters by period only when both month and year are given.
func (s *Service) GetMyPayroll(ctx context.Context, userID int64, month, year *int) ([]*Payroll, error) {
	f := Filter{UserID: &userID}
	if month != nil && year != nil {
		if *month < 1 || *month > 12 {
			return nil, ErrInvalidMonth
		}
		f.Month, f.Year = month, year
	}
	return s.list(ctx, f)
}

func (s *Service) GetAllPayroll(ctx context.Context, q ListQuery) ([]*Payroll, error) {
	f := Filter{UserID: q.UserID, Month: q.Month, Year: q.Year}
	if q.Status != "" {
		st := Status(q.Status)
		if !st.Valid() {
			return nil, internal.NewValidationFieldError("status", "status must be one of: pending, processed, paid", internal.ErrCodeInvalidStatus)
		}
		f.Status = &st
	}
	return s.list(ctx, f)
}

func (s *Service) list(ctx context.Context, f Filter) ([]*Payroll, error) {
	records, err := s.repo.List(ctx, f)
	if err != nil {
		s.logger.Error("failed to list payroll", "error", err)
		return nil, internal.NewInternalError("Failed to fetch payroll records", err)
	}
	return records, nil
}

func (s *Service) CreatePayroll(ctx context.Context, dto CreatePayrollDTO) (*Payroll, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	if _, err := s.employees.GetByID(ctx, dto.UserID); err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("Failed to create payroll", err)
	}

	p := &Payroll{
		UserID:      dto.UserID,
		Month:       dto.Month,
		Year:        dto.Year,
		BasicSalary: dto.BasicSalary,
		Allowances:  dto.Allowances.Apply(compensation.Allowances{}),
		Deductions:  dto.Deductions.Apply(compensation.Deductions{}),
		Status:      StatusPending,
		Remarks:     strings.TrimSpace(dto.Remarks),
	}
	if dto.WorkingDays != nil {
		p.WorkingDays = *dto.WorkingDays
	}
	if dto.PresentDays != nil {
		p.PresentDays = *dto.PresentDays
	}
	p.Recompute()

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}
		s.logger.Error("failed to create payroll", "user_id", dto.UserID, "error", err)
		return nil, internal.NewInternalError("Failed to create payroll", err)
	}

	s.logger.Info("payroll created", "payroll_id", p.ID, "user_id", p.UserID, "month", p.Month, "year", p.Year)
	return s.reload(ctx, p.ID, "Failed to create payroll")
}

func (s *Service) UpdatePayroll(ctx context.Context, id int64, dto UpdatePayrollDTO) (*Payroll, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "Failed to update payroll")
	}
	wasPaid := p.Status == StatusPaid

	if dto.BasicSalary != nil {
		p.BasicSalary = *dto.BasicSalary
	}
	p.Allowances = dto.Allowances.Apply(p.Allowances)
	p.Deductions = dto.Deductions.Apply(p.Deductions)
	if dto.WorkingDays != nil {
		p.WorkingDays = *dto.WorkingDays
	}
	if dto.PresentDays != nil {
		p.PresentDays = *dto.PresentDays
	}
	if dto.Status != nil {
		p.Status = Status(*dto.Status)
		if p.Status == StatusPaid {
			paidOn := s.now.Now().UTC()
			p.PaidOn = &paidOn
		}
	}
	if dto.Remarks != nil {
		p.Remarks = strings.TrimSpace(*dto.Remarks)
	}
	p.Recompute()

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("failed to update payroll", "payroll_id", id, "error", err)
		return nil, s.lookupError(err, "Failed to update payroll")
	}

	s.logger.Info("payroll updated", "payroll_id", id, "status", p.Status, "net", p.NetSalary)

	updated, err := s.reload(ctx, id, "Failed to update payroll")
	if err != nil {
		return nil, err
	}
	if !wasPaid && updated.Status == StatusPaid {
		s.announcePaid(ctx, updated)
	}
	return updated, nil
}

func (s *Service) DeletePayroll(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.lookupError(err, "Failed to delete payroll")
	}
	s.logger.Info("payroll deleted", "payroll_id", id)
	return nil
}

// GetPayrollSlip returns a payroll to its owner or an administrator.
func (s *Service) GetPayrollSlip(ctx context.Context, actor *internal.CurrentUser, id int64) (*Payroll, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "Failed to fetch payroll slip")
	}
	if p.UserID != actor.ID && !actor.IsAdmin() {
		return nil, ErrSlipForbidden
	}
	return p, nil
}

// GeneratePayroll drafts the period's payroll for every active employee who
// has none yet. Employees that already have one are reported, not failed.
func (s *Service) GeneratePayroll(ctx context.Context, dto GenerateDTO) (*GenerateResult, error) {
	if dto.Month == 0 || dto.Year == 0 {
		return nil, ErrPeriodRequired
	}
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	employees, err := s.employees.ListActiveEmployees(ctx)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, internal.NewInternalError("Failed to generate payroll", err)
	}

	result := &GenerateResult{ErrorDetails: []GenerateError{}}
	for _, e := range employees {
		p := FromSalaryStructure(e, dto.Month, dto.Year)
		if err := s.repo.Create(ctx, p); err != nil {
			msg := "Payroll already exists"
			if !errors.Is(err, ErrAlreadyExists) {
				s.logger.Error("failed to generate payroll", "user_id", e.ID, "error", err)
				msg = err.Error()
			}
			result.ErrorDetails = append(result.ErrorDetails, GenerateError{Employee: e.Name, Error: msg})
			continue
		}
		result.Generated++
	}
	result.Errors = len(result.ErrorDetails)

	s.logger.Info("payroll generated", "month", dto.Month, "year", dto.Year,
		"generated", result.Generated, "errors", result.Errors)
	return result, nil
}

func (s *Service) reload(ctx context.Context, id int64, msg string) (*Payroll, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, msg)
	}
	return p, nil
}

func (s *Service) announcePaid(ctx context.Context, p *Payroll) {
	if s.publisher == nil || p.PaidOn == nil {
		return
	}
	event := events.NewPayrollPaidEvent(p.ID, p.UserID, p.Month, p.Year, p.NetSalary, *p.PaidOn)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish payroll event", "payroll_id", p.ID, "error", err)
	}
}

func (s *Service) lookupError(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return internal.NewInternalError(msg, err)
}
