package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/core/clock"
	"github.com/frahmantamala/dayflow/internal/core/common/validation"
	"github.com/frahmantamala/dayflow/internal/core/role"
	"github.com/frahmantamala/dayflow/internal/mailer"
	"github.com/frahmantamala/dayflow/internal/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// CredentialRepository writes the secret columns of a user row.
type CredentialRepository interface {
	SetResetOTP(ctx context.Context, userID int64, hash *string, expiresAt *time.Time) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type Options struct {
	BCryptCost int
	OTPTTL     time.Duration
	Now        clock.Func
}

// Service is the main auth service with dependencies
type Service struct {
	users       UserRepository
	credentials CredentialRepository
	tokens      TokenGenerator
	mail        mailer.Sender
	bcryptCost  int
	otpTTL      time.Duration
	now         clock.Func
	logger      *slog.Logger
}

var (
	ErrEmailNotFound = internal.NewNotFoundError("User not found with that email", internal.ErrCodeUserNotFound)
	ErrInvalidOTP    = internal.NewValidationError("Invalid OTP or OTP expired", internal.ErrCodeInvalidOTP)
	ErrEmailNotSent  = &internal.AppError{
		Type:       internal.ErrorTypeExternal,
		Code:       internal.ErrCodeEmailNotSent,
		Message:    "Email could not be sent",
		StatusCode: http.StatusInternalServerError,
	}
	ErrResetFields     = internal.NewValidationError("Please provide email, OTP and new password", internal.ErrCodeValidationFailed)
	ErrSessionNotFound = internal.NewUnauthorizedError("User not found", internal.ErrCodeUserNotFound)
)

// NewService creates a new auth service
func NewService(users UserRepository, credentials CredentialRepository, tokens TokenGenerator, mail mailer.Sender, opts Options, logger *slog.Logger) *Service {
	if opts.BCryptCost == 0 {
		opts.BCryptCost = bcrypt.DefaultCost
	}
	if opts.OTPTTL == 0 {
		opts.OTPTTL = 10 * time.Minute
	}
	return &Service{
		users:       users,
		credentials: credentials,
		tokens:      tokens,
		mail:        mail,
		bcryptCost:  opts.BCryptCost,
		otpTTL:      opts.OTPTTL,
		now:         opts.Now,
		logger:      logger,
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*AuthResponse, error) {
	dto.Email = user.NormalizeEmail(dto.Email)
	dto.Role = strings.ToLower(strings.TrimSpace(dto.Role))
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	r := role.Employee
	if dto.Role != "" {
		parsed, err := role.Parse(dto.Role)
		if err != nil {
			return nil, internal.NewValidationFieldError("role", "role must be one of: employee, hr, admin", internal.ErrCodeInvalidRole)
		}
		r = parsed
	}

	exists, err := s.users.ExistsByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("Failed to register user", err)
	}
	if exists {
		return nil, internal.ErrUserExists
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("Failed to register user", err)
	}

	u := &user.User{
		Name:         strings.TrimSpace(dto.Name),
		Email:        dto.Email,
		Role:         r,
		EmployeeID:   dto.EmployeeID,
		Department:   dto.Department,
		Designation:  dto.Designation,
		Status:       user.StatusActive,
		LeaveBalance: user.DefaultLeaveBalance(),
		PasswordHash: hash,
	}

	// the unique index catches a concurrent registration the pre-check missed
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, internal.ErrUserExists) {
			return nil, internal.ErrUserExists
		}
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, internal.NewInternalError("Failed to register user", err)
	}

	s.logger.Info("user registered", "user_id", u.ID, "role", u.Role)
	return s.issue(u)
}

// Login checks the credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthResponse, error) {
	dto.Email = user.NormalizeEmail(dto.Email)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, internal.NewInternalError("Failed to login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login rejected", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}

	return s.issue(u)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, err
		}
		return nil, internal.NewInternalError("Failed to fetch user", err)
	}
	return u, nil
}

// Authenticate verifies a bearer token and loads the user it names.
func (s *Service) Authenticate(ctx context.Context, token string) (*internal.CurrentUser, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, internal.NewInternalError("Failed to authenticate", err)
	}

	return u.ToCurrentUser(), nil
}

// ForgotPassword stores a hashed one-time code and mails the plain code to
// the user. When mail delivery fails the code is withdrawn.
func (s *Service) ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) error {
	dto.Email = user.NormalizeEmail(dto.Email)
	if err := validation.Struct(dto); err != nil {
		return err
	}

	u, err := s.users.GetByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return ErrEmailNotFound
		}
		return internal.NewInternalError("Failed to process request", err)
	}

	otp, err := GenerateOTP()
	if err != nil {
		return internal.NewInternalError("Failed to process request", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(otp), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("Failed to process request", err)
	}
	hash := string(hashed)
	expiresAt := s.now.Now().Add(s.otpTTL)

	if err := s.credentials.SetResetOTP(ctx, u.ID, &hash, &expiresAt); err != nil {
		return internal.NewInternalError("Failed to process request", err)
	}

	msg := mailer.Message{
		To:      u.Email,
		Subject: "Dayflow HRMS - Password Reset OTP",
		Text: "You are receiving this email because you (or someone else) has requested the reset of a password.\n\n" +
			"Your OTP is: " + otp + "\n\n" +
			"This OTP is valid for " + s.otpTTL.String() + ".",
	}

	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send reset otp", "user_id", u.ID, "error", err)
		if clearErr := s.credentials.SetResetOTP(ctx, u.ID, nil, nil); clearErr != nil {
			s.logger.Error("failed to clear reset otp", "user_id", u.ID, "error", clearErr)
		}
		return ErrEmailNotSent.WithCause(err)
	}

	s.logger.Info("reset otp sent", "user_id", u.ID)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) (*AuthResponse, error) {
	dto.Email = user.NormalizeEmail(dto.Email)
	dto.OTP = strings.TrimSpace(dto.OTP)
	if dto.Email == "" || dto.OTP == "" || dto.Password == "" {
		return nil, ErrResetFields
	}
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, internal.NewInternalError("Failed to reset password", err)
	}

	if u.ResetOTPHash == nil || u.ResetOTPExpiresAt == nil || !s.now.Now().Before(*u.ResetOTPExpiresAt) {
		return nil, ErrInvalidOTP
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.ResetOTPHash), []byte(dto.OTP)); err != nil {
		return nil, ErrInvalidOTP
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("Failed to reset password", err)
	}
	if err := s.credentials.UpdatePassword(ctx, u.ID, hash); err != nil {
		return nil, internal.NewInternalError("Failed to reset password", err)
	}

	s.logger.Info("password reset", "user_id", u.ID)
	return s.issue(u)
}

func (s *Service) issue(u *user.User) (*AuthResponse, error) {
	token, err := s.tokens.GenerateToken(u.ID, u.Role)
	if err != nil {
		return nil, internal.NewInternalError("Failed to issue token", err)
	}
	return newAuthResponse(u, token), nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
