package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/attendance"
	attendancePostgres "github.com/frahmantamala/dayflow/internal/attendance/postgres"
	"github.com/frahmantamala/dayflow/internal/auth"
	authPostgres "github.com/frahmantamala/dayflow/internal/auth/postgres"
	"github.com/frahmantamala/dayflow/internal/core/events"
	"github.com/frahmantamala/dayflow/internal/leave"
	leavePostgres "github.com/frahmantamala/dayflow/internal/leave/postgres"
	"github.com/frahmantamala/dayflow/internal/mailer"
	"github.com/frahmantamala/dayflow/internal/payroll"
	payrollPostgres "github.com/frahmantamala/dayflow/internal/payroll/postgres"
	"github.com/frahmantamala/dayflow/internal/profile"
	"github.com/frahmantamala/dayflow/internal/transport"
	"github.com/frahmantamala/dayflow/internal/transport/rest"
	"github.com/frahmantamala/dayflow/internal/transport/swagger"
	"github.com/frahmantamala/dayflow/internal/user"
	userPostgres "github.com/frahmantamala/dayflow/internal/user/postgres"
	"github.com/frahmantamala/dayflow/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		deps.Logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr, "env", deps.Config.App.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.EventBus.Wait(ctx); err != nil {
			deps.Logger.Warn("event handlers still running at shutdown", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger

	if _, err := swagger.Load(context.Background()); err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	now := time.Now

	mail := newMailSender(cfg, lg)

	userRepo := userPostgres.NewUserRepository(deps.Gorm)
	dashboardRepo := userPostgres.NewDashboardRepository(deps.DB)
	credentialRepo := authPostgres.NewCredentialRepository(deps.Gorm)
	attendanceRepo := attendancePostgres.NewAttendanceRepository(deps.Gorm)
	leaveRepo := leavePostgres.NewLeaveRepository(deps.Gorm)
	payrollRepo := payrollPostgres.NewPayrollRepository(deps.Gorm)

	mailer.NewNotifier(mail, userRepo, lg).Register(deps.EventBus)

	pictures, err := profile.NewDiskStore(cfg.Storage.UploadDir)
	if err != nil {
		return err
	}

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenDuration, now)
	authService := auth.NewService(userRepo, credentialRepo, tokens, mail, auth.Options{
		BCryptCost: cfg.Security.BCryptCost,
		OTPTTL:     cfg.Security.OTPDuration,
		Now:        now,
	}, lg)
	userService := user.NewService(userRepo, dashboardRepo, now, loc, lg)
	profileService := profile.NewService(userRepo, pictures, lg)
	attendanceService := attendance.NewService(attendanceRepo, now, loc, lg)
	leaveService := leave.NewService(leaveRepo, deps.EventBus, lg)
	payrollService := payroll.NewService(payrollRepo, userRepo, deps.EventBus, now, lg)

	base := transport.NewBaseHandler(lg)
	base.ExposeErrors = !cfg.IsProduction()

	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Auth:       auth.NewHandler(base, authService),
		User:       user.NewHandler(base, userService),
		Profile:    profile.NewHandler(base, profileService, cfg.Storage.MaxUploadBytes),
		Attendance: attendance.NewHandler(base, attendanceService),
		Leave:      leave.NewHandler(base, leaveService),
		Payroll:    payroll.NewHandler(base, payrollService),
		Health:     rest.NewHealthHandler(deps.DB),
	}, rest.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		UploadDir:      cfg.Storage.UploadDir,
		ExposeErrors:   base.ExposeErrors,
	}, lg)

	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	initLogger(config)
	lg := logger.LoggerWrapper()

	db, gdb, err := initDB(config.Database, config.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		Gorm:     gdb,
		Router:   chi.NewRouter(),
		EventBus: events.NewEventBus(lg),
	}, nil
}

// initDB opens one pgx pool and shares it between sqlx and gorm.
func initDB(cfg internal.DatabaseConfig, production bool) (*sqlx.DB, *gorm.DB, error) {
	const driver = "pgx"

	ctx, cancel := internal.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	dbConn, err := sqlx.ConnectContext(ctx, driver, cfg.GetDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logLevel := gormlogger.Warn
	if production {
		logLevel = gormlogger.Error
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return dbConn, gdb, nil
}
