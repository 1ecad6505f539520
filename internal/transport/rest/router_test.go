package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/dayflow/internal/attendance"
	attendancePostgres "github.com/frahmantamala/dayflow/internal/attendance/postgres"
	"github.com/frahmantamala/dayflow/internal/auth"
	authPostgres "github.com/frahmantamala/dayflow/internal/auth/postgres"
	"github.com/frahmantamala/dayflow/internal/core/datamodel/datamodeltest"
	"github.com/frahmantamala/dayflow/internal/core/events"
	"github.com/frahmantamala/dayflow/internal/leave"
	leavePostgres "github.com/frahmantamala/dayflow/internal/leave/postgres"
	"github.com/frahmantamala/dayflow/internal/mailer"
	"github.com/frahmantamala/dayflow/internal/payroll"
	payrollPostgres "github.com/frahmantamala/dayflow/internal/payroll/postgres"
	"github.com/frahmantamala/dayflow/internal/profile"
	"github.com/frahmantamala/dayflow/internal/transport"
	"github.com/frahmantamala/dayflow/internal/transport/rest"
	"github.com/frahmantamala/dayflow/internal/user"
	userPostgres "github.com/frahmantamala/dayflow/internal/user/postgres"
	"github.com/frahmantamala/dayflow/pkg/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return fmt.Errorf("connection refused") }

var _ = Describe("API routes", func() {
	var (
		server   *httptest.Server
		sqlDB    *sqlx.DB
		handlers rest.Handlers
	)

	call := func(method, path, token string, body interface{}) (int, envelope) {
		var reader io.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		}
		req, err := http.NewRequest(method, server.URL+path, reader)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		var env envelope
		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		if len(raw) > 0 {
			Expect(json.Unmarshal(raw, &env)).To(Succeed(), string(raw))
		}
		return resp.StatusCode, env
	}

	register := func(name, email, r string) string {
		status, env := call(http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": name, "email": email, "password": "password123", "role": r,
		})
		Expect(status).To(Equal(http.StatusCreated))
		var resp auth.AuthResponse
		Expect(json.Unmarshal(env.Data, &resp)).To(Succeed())
		return resp.Token
	}

	BeforeEach(func() {
		db, err := datamodeltest.Open()
		Expect(err).NotTo(HaveOccurred())
		raw, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB = sqlx.NewDb(raw, "sqlite3")

		lg := logger.Discard()
		bus := events.NewEventBus(lg)
		userRepo := userPostgres.NewUserRepository(db)
		mailer.NewNotifier(mailer.NewLogSender(lg), userRepo, lg).Register(bus)

		store, err := profile.NewDiskStore(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		authService := auth.NewService(userRepo, authPostgres.NewCredentialRepository(db),
			auth.NewJWTTokenGenerator("router-test-secret-16", time.Hour, nil),
			mailer.NewLogSender(lg), auth.Options{BCryptCost: bcrypt.MinCost}, lg)

		base := transport.NewBaseHandler(lg)
		handlers = rest.Handlers{
			Auth:       auth.NewHandler(base, authService),
			User:       user.NewHandler(base, user.NewService(userRepo, userPostgres.NewDashboardRepository(sqlDB), nil, time.UTC, lg)),
			Profile:    profile.NewHandler(base, profile.NewService(userRepo, store, lg), 1<<20),
			Attendance: attendance.NewHandler(base, attendance.NewService(attendancePostgres.NewAttendanceRepository(db), nil, time.UTC, lg)),
			Leave:      leave.NewHandler(base, leave.NewService(leavePostgres.NewLeaveRepository(db), bus, lg)),
			Payroll:    payroll.NewHandler(base, payroll.NewService(payrollPostgres.NewPayrollRepository(db), userRepo, bus, nil, lg)),
			Health:     rest.NewHealthHandler(sqlDB),
		}
		router := chi.NewRouter()
		rest.RegisterAllRoutes(router, handlers, rest.Options{AllowedOrigins: "http://localhost:5173"}, lg)

		server = httptest.NewServer(router)
		DeferCleanup(func() {
			server.Close()
			Expect(bus.Wait(context.Background())).To(Succeed())
		})
	})

	It("should answer the liveness and readiness probes", func() {
		status, env := call(http.MethodGet, "/api/ping", "", nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(env.Message).To(Equal("pong"))

		resp, err := http.Get(server.URL + "/api/health")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		var health rest.HealthResponse
		Expect(json.NewDecoder(resp.Body).Decode(&health)).To(Succeed())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(health.Status).To(Equal(rest.HealthHealthy))
		Expect(health.Components).To(HaveKey("database"))
	})

	It("should serve the OpenAPI document", func() {
		resp, err := http.Get(server.URL + "/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		body, _ := io.ReadAll(resp.Body)
		Expect(string(body)).To(ContainSubstring("openapi:"))
	})

	It("should answer CORS preflights for allowed origins", func() {
		req, _ := http.NewRequest(http.MethodOptions, server.URL+"/api/leaves", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:5173"))
	})

	It("should require a token outside /auth", func() {
		status, env := call(http.MethodGet, "/api/leaves/my-leaves", "", nil)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(env.Success).To(BeFalse())
	})

	It("should walk a leave from application to approval", func() {
		employee := register("John Doe", "john@example.com", "employee")
		hr := register("Hana", "hr@example.com", "hr")

		status, env := call(http.MethodPost, "/api/leaves", employee, map[string]string{
			"leaveType": "sick", "startDate": "2024-01-10", "endDate": "2024-01-12", "reason": "flu",
		})
		Expect(status).To(Equal(http.StatusCreated))
		var l leave.Leave
		Expect(json.Unmarshal(env.Data, &l)).To(Succeed())

		status, _ = call(http.MethodGet, "/api/leaves", employee, nil)
		Expect(status).To(Equal(http.StatusForbidden))

		status, env = call(http.MethodGet, "/api/leaves?status=pending", hr, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(*env.Count).To(Equal(1))

		status, env = call(http.MethodPut, fmt.Sprintf("/api/leaves/%d", l.ID), hr, map[string]string{"status": "approved"})
		Expect(status).To(Equal(http.StatusOK))
		Expect(env.Message).To(Equal("Leave approved successfully"))

		status, env = call(http.MethodGet, "/api/auth/me", employee, nil)
		Expect(status).To(Equal(http.StatusOK))
		var me user.User
		Expect(json.Unmarshal(env.Data, &me)).To(Succeed())
		Expect(me.LeaveBalance.Sick).To(Equal(7))

		status, _ = call(http.MethodDelete, fmt.Sprintf("/api/leaves/%d", l.ID), employee, nil)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	It("should reject an inverted leave period", func() {
		employee := register("John Doe", "john@example.com", "employee")
		status, env := call(http.MethodPost, "/api/leaves", employee, map[string]string{
			"leaveType": "paid", "startDate": "2024-01-12", "endDate": "2024-01-10", "reason": "trip",
		})
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(env.Message).To(Equal("Start date must be before end date"))
	})

	It("should check in once a day", func() {
		employee := register("John Doe", "john@example.com", "employee")

		status, env := call(http.MethodPost, "/api/attendance/check-in", employee, map[string]string{"location": "Remote"})
		Expect(status).To(Equal(http.StatusOK))
		Expect(env.Message).To(Equal("Checked in successfully"))

		status, env = call(http.MethodPost, "/api/attendance/check-in", employee, nil)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(env.Message).To(Equal("Already checked in today"))

		status, env = call(http.MethodGet, "/api/attendance/my-attendance", employee, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(*env.Count).To(Equal(1))

		status, _ = call(http.MethodGet, "/api/attendance", employee, nil)
		Expect(status).To(Equal(http.StatusForbidden))
	})

	It("should let managers generate payroll and only admins list users", func() {
		register("John Doe", "john@example.com", "employee")
		hr := register("Hana", "hr@example.com", "hr")
		admin := register("Root", "admin@example.com", "admin")

		status, env := call(http.MethodPost, "/api/payroll/generate", hr, map[string]int{"month": 1, "year": 2024})
		Expect(status).To(Equal(http.StatusOK))
		Expect(env.Message).To(Equal("Generated 1 payroll records"))

		status, env = call(http.MethodPost, "/api/payroll/generate", hr, map[string]int{"month": 1, "year": 2024})
		Expect(status).To(Equal(http.StatusOK))
		Expect(env.Message).To(Equal("Generated 0 payroll records"))

		status, _ = call(http.MethodGet, "/api/users", hr, nil)
		Expect(status).To(Equal(http.StatusForbidden))

		status, env = call(http.MethodGet, "/api/users", admin, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(*env.Count).To(Equal(2))
	})

	It("should report an unreachable database as unhealthy", func() {
		handlers.Health = rest.NewHealthHandler(failingPinger{})
		router := chi.NewRouter()
		rest.RegisterAllRoutes(router, handlers, rest.Options{}, logger.Discard())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
