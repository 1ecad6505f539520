package auth_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/auth"
	authPostgres "github.com/frahmantamala/dayflow/internal/auth/postgres"
	"github.com/frahmantamala/dayflow/internal/core/clock"
	"github.com/frahmantamala/dayflow/internal/core/datamodel/datamodeltest"
	"github.com/frahmantamala/dayflow/internal/core/role"
	"github.com/frahmantamala/dayflow/internal/mailer"
	userPostgres "github.com/frahmantamala/dayflow/internal/user/postgres"
	"github.com/frahmantamala/dayflow/pkg/logger"
)

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail error
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail != nil {
		return o.fail
	}
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) last() mailer.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent[len(o.sent)-1]
}

var otpPattern = regexp.MustCompile(`Your OTP is: (\d{6})`)

var _ = Describe("Auth Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		clk     *clock.Fixed
		mail    *outbox
		tokens  *auth.JWTTokenGenerator
		service *auth.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = datamodeltest.Open()
		Expect(err).NotTo(HaveOccurred())

		clk = clock.NewFixed(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
		mail = &outbox{}
		tokens = auth.NewJWTTokenGenerator("test-secret-at-least-16", time.Hour, clk.Func())
		service = auth.NewService(
			userPostgres.NewUserRepository(db),
			authPostgres.NewCredentialRepository(db),
			tokens,
			mail,
			auth.Options{BCryptCost: bcrypt.MinCost, OTPTTL: 10 * time.Minute, Now: clk.Func()},
			logger.Discard(),
		)
	})

	register := func(email string) *auth.AuthResponse {
		resp, err := service.Register(ctx, auth.RegisterDTO{
			Name:     "Jane Smith",
			Email:    email,
			Password: "secret123",
		})
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	Describe("Register", func() {
		It("should create an employee with a lowercased email and a token", func() {
			resp := register("  Jane@Example.COM ")

			Expect(resp.ID).To(BeNumerically(">", 0))
			Expect(resp.Email).To(Equal("jane@example.com"))
			Expect(resp.Role).To(Equal(role.Employee))
			Expect(resp.Token).NotTo(BeEmpty())
		})

		It("should give new users the default leave balance", func() {
			resp := register("jane@example.com")

			u, err := service.GetCurrentUser(ctx, resp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.LeaveBalance.Paid).To(Equal(12))
			Expect(u.LeaveBalance.Sick).To(Equal(10))
			Expect(u.LeaveBalance.Casual).To(Equal(8))
			Expect(u.LeaveBalance.Unpaid).To(Equal(0))
		})

		It("should reject a duplicate email regardless of case", func() {
			register("jane@example.com")

			_, err := service.Register(ctx, auth.RegisterDTO{
				Name:     "Other Jane",
				Email:    "JANE@example.com",
				Password: "secret123",
			})
			Expect(errors.Is(err, internal.ErrUserExists)).To(BeTrue())
		})

		It("should honour an explicit role", func() {
			resp, err := service.Register(ctx, auth.RegisterDTO{
				Name:     "Hana",
				Email:    "hr@example.com",
				Password: "secret123",
				Role:     "HR",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Role).To(Equal(role.HR))
		})

		It("should reject a short password", func() {
			_, err := service.Register(ctx, auth.RegisterDTO{
				Name:     "Jane",
				Email:    "jane@example.com",
				Password: "123",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			register("jane@example.com")
		})

		It("should issue a token that authenticates the user", func() {
			resp, err := service.Login(ctx, auth.LoginDTO{Email: "Jane@Example.com", Password: "secret123"})
			Expect(err).NotTo(HaveOccurred())

			current, err := service.Authenticate(ctx, resp.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.ID).To(Equal(resp.ID))
			Expect(current.Role).To(Equal(role.Employee))
		})

		It("should reject a wrong password", func() {
			_, err := service.Login(ctx, auth.LoginDTO{Email: "jane@example.com", Password: "nope"})
			Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(BeTrue())
		})

		It("should not reveal whether the email exists", func() {
			_, err := service.Login(ctx, auth.LoginDTO{Email: "ghost@example.com", Password: "secret123"})
			Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(BeTrue())
		})
	})

	Describe("Authenticate", func() {
		It("should reject an expired token", func() {
			resp := register("jane@example.com")
			clk.Advance(2 * time.Hour)

			_, err := service.Authenticate(ctx, resp.Token)
			Expect(errors.Is(err, internal.ErrTokenExpired)).To(BeTrue())
		})

		It("should reject a token signed with another secret", func() {
			resp := register("jane@example.com")
			other := auth.NewJWTTokenGenerator("another-secret-of-16", time.Hour, clk.Func())

			_, err := other.ValidateToken(resp.Token)
			Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeTrue())
		})

		It("should reject a token for a user that no longer exists", func() {
			token, err := tokens.GenerateToken(999, role.Employee)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Authenticate(ctx, token)
			Expect(errors.Is(err, auth.ErrSessionNotFound)).To(BeTrue())
		})
	})

	Describe("Password reset", func() {
		BeforeEach(func() {
			register("jane@example.com")
		})

		It("should mail a six digit code that resets the password once", func() {
			Expect(service.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "jane@example.com"})).To(Succeed())

			match := otpPattern.FindStringSubmatch(mail.last().Text)
			Expect(match).To(HaveLen(2))
			otp := match[1]

			resp, err := service.ResetPassword(ctx, auth.ResetPasswordDTO{
				Email: "jane@example.com", OTP: otp, Password: "newsecret",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Token).NotTo(BeEmpty())

			_, err = service.Login(ctx, auth.LoginDTO{Email: "jane@example.com", Password: "newsecret"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ResetPassword(ctx, auth.ResetPasswordDTO{
				Email: "jane@example.com", OTP: otp, Password: "another1",
			})
			Expect(errors.Is(err, auth.ErrInvalidOTP)).To(BeTrue())
		})

		It("should reject an expired code", func() {
			Expect(service.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "jane@example.com"})).To(Succeed())
			otp := otpPattern.FindStringSubmatch(mail.last().Text)[1]

			clk.Advance(11 * time.Minute)
			_, err := service.ResetPassword(ctx, auth.ResetPasswordDTO{
				Email: "jane@example.com", OTP: otp, Password: "newsecret",
			})
			Expect(errors.Is(err, auth.ErrInvalidOTP)).To(BeTrue())
		})

		It("should report an unknown email", func() {
			err := service.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "ghost@example.com"})
			Expect(errors.Is(err, auth.ErrEmailNotFound)).To(BeTrue())
		})

		It("should withdraw the code when the mail cannot be sent", func() {
			mail.fail = errors.New("smtp down")

			err := service.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "jane@example.com"})
			Expect(errors.Is(err, auth.ErrEmailNotSent)).To(BeTrue())

			_, err = service.ResetPassword(ctx, auth.ResetPasswordDTO{
				Email: "jane@example.com", OTP: "123456", Password: "newsecret",
			})
			Expect(errors.Is(err, auth.ErrInvalidOTP)).To(BeTrue())
		})

		It("should keep the code out of the log when mail is not relayed", func() {
			var logs bytes.Buffer
			lg := slog.New(slog.NewJSONHandler(&logs, nil))
			logOnly := auth.NewService(
				userPostgres.NewUserRepository(db),
				authPostgres.NewCredentialRepository(db),
				tokens,
				mailer.NewLogSender(lg),
				auth.Options{BCryptCost: bcrypt.MinCost, OTPTTL: 10 * time.Minute, Now: clk.Func()},
				lg,
			)

			Expect(logOnly.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "jane@example.com"})).To(Succeed())
			Expect(logs.String()).To(ContainSubstring("Password Reset OTP"))
			Expect(logs.String()).NotTo(ContainSubstring("Your OTP is"))
			Expect(otpPattern.MatchString(logs.String())).To(BeFalse())
		})

		It("should require every field", func() {
			_, err := service.ResetPassword(ctx, auth.ResetPasswordDTO{Email: "jane@example.com"})
			Expect(errors.Is(err, auth.ErrResetFields)).To(BeTrue())
		})
	})

	Describe("GenerateOTP", func() {
		It("should always produce six digits", func() {
			for i := 0; i < 50; i++ {
				otp, err := auth.GenerateOTP()
				Expect(err).NotTo(HaveOccurred())
				Expect(otp).To(MatchRegexp(`^\d{6}$`))
			}
		})
	})
})
