package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/dayflow/internal/attendance"
	"github.com/frahmantamala/dayflow/internal/auth"
	"github.com/frahmantamala/dayflow/internal/core/role"
	"github.com/frahmantamala/dayflow/internal/leave"
	"github.com/frahmantamala/dayflow/internal/payroll"
	"github.com/frahmantamala/dayflow/internal/profile"
	"github.com/frahmantamala/dayflow/internal/transport/middleware"
	"github.com/frahmantamala/dayflow/internal/transport/swagger"
	"github.com/frahmantamala/dayflow/internal/user"
)

// Handlers bundles the HTTP handlers mounted under /api.
type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Profile    *profile.Handler
	Attendance *attendance.Handler
	Leave      *leave.Handler
	Payroll    *payroll.Handler
	Health     *HealthHandler
}

type Options struct {
	AllowedOrigins string
	UploadDir      string
	ExposeErrors   bool
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	managers := middleware.Authorize(logger, role.Admin, role.HR)
	adminOnly := middleware.Authorize(logger, role.Admin)

	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RecoveryMiddleware(logger, opts.ExposeErrors))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Dayflow HRMS API is running..."))
	})

	router.Get("/openapi.yml", swagger.SpecHandler())
	router.Handle("/swagger/*", swagger.Handler())

	if opts.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir)))
		router.Handle("/uploads/*", fs)
	}

	router.Route("/api", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
			ar.Post("/forgotpassword", h.Auth.ForgotPassword)
			ar.Put("/resetpassword", h.Auth.ResetPassword)
			ar.With(h.Auth.Protect, middleware.UserContext).Get("/me", h.Auth.Me)
		})

		// everything below requires a bearer token
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.Protect)
			pr.Use(middleware.UserContext)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/dashboard", h.User.GetDashboardStats)
				ur.With(adminOnly).Get("/", h.User.GetAllUsers)
			})

			pr.Route("/profile", func(prr chi.Router) {
				prr.Get("/", h.Profile.Get)
				prr.Put("/", h.Profile.Update)
				prr.Post("/upload", h.Profile.UploadPicture)
				prr.Delete("/picture", h.Profile.DeletePicture)
			})

			pr.Route("/leaves", func(lr chi.Router) {
				lr.Post("/", h.Leave.Apply)
				lr.Get("/my-leaves", h.Leave.GetMine)
				lr.Delete("/{id}", h.Leave.Delete)
				lr.With(managers).Get("/", h.Leave.GetAll)
				lr.With(managers).Put("/{id}", h.Leave.UpdateStatus)
			})

			pr.Route("/attendance", func(atr chi.Router) {
				atr.Post("/check-in", h.Attendance.CheckIn)
				atr.Post("/check-out", h.Attendance.CheckOut)
				atr.Get("/today", h.Attendance.GetToday)
				atr.Get("/my-attendance", h.Attendance.GetMine)
				atr.Group(func(mr chi.Router) {
					mr.Use(managers)
					mr.Get("/", h.Attendance.GetAll)
					mr.Put("/{id}", h.Attendance.Update)
					mr.Delete("/{id}", h.Attendance.Delete)
				})
			})

			pr.Route("/payroll", func(pyr chi.Router) {
				pyr.Get("/my-payroll", h.Payroll.GetMine)
				pyr.Get("/slip/{id}", h.Payroll.GetSlip)
				pyr.Group(func(mr chi.Router) {
					mr.Use(managers)
					mr.Get("/", h.Payroll.GetAll)
					mr.Post("/", h.Payroll.Create)
					mr.Get("/export", h.Payroll.Export)
					mr.Post("/generate", h.Payroll.Generate)
					mr.Put("/{id}", h.Payroll.Update)
					mr.Delete("/{id}", h.Payroll.Delete)
				})
			})
		})
	})
}
