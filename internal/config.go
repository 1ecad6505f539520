package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Mail          MailConfig          `mapstructure:"mail"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type AppConfig struct {
	Env      string `mapstructure:"env" validate:"required,oneof=development production test"`
	Timezone string `mapstructure:"timezone"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	Source          string        `mapstructure:"source" validate:"required"`
}

type SecurityConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenDuration time.Duration `mapstructure:"token_duration" validate:"required,min=1h"`
	BCryptCost    int           `mapstructure:"bcrypt_cost" validate:"required,min=4,max=15"`
	OTPDuration   time.Duration `mapstructure:"otp_duration" validate:"required,min=1m"`
}

type MailConfig struct {
	Host      string `mapstructure:"smtp_host"`
	Port      int    `mapstructure:"smtp_port" validate:"omitempty,min=1,max=65535"`
	Username  string `mapstructure:"smtp_email"`
	Password  string `mapstructure:"smtp_password"`
	FromName  string `mapstructure:"from_name"`
	FromEmail string `mapstructure:"from_email" validate:"omitempty,email"`
}

// Enabled reports whether an SMTP relay is configured. Without one, mail is
// written to the log.
func (c MailConfig) Enabled() bool {
	return c.Host != ""
}

type StorageConfig struct {
	UploadDir      string `mapstructure:"upload_dir" validate:"required"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"required,min=1024"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// Defaults returns a configuration usable for local development. Loaders
// start from it and override what they find.
func Defaults() Config {
	return Config{
		App: AppConfig{Env: "development", Timezone: "Local"},
		Server: ServerConfig{
			Port:              5000,
			AllowedOrigins:    "*",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		Security: SecurityConfig{
			TokenDuration: 30 * 24 * time.Hour,
			BCryptCost:    10,
			OTPDuration:   10 * time.Minute,
		},
		Mail: MailConfig{Port: 587, FromName: "Dayflow HRMS"},
		Storage: StorageConfig{
			UploadDir:      "uploads",
			MaxUploadBytes: 5 << 20,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Level: "info", Format: "text"},
		},
	}
}

// LoadConfigFromEnv builds the configuration from environment variables, for
// container deployments.
func LoadConfigFromEnv() *Config {
	cfg := Defaults()

	env := getEnv("APP_ENV", getEnv("NODE_ENV", cfg.App.Env))
	cfg.App.Env = env
	cfg.App.Timezone = getEnv("TIMEZONE", cfg.App.Timezone)

	cfg.Server.Port = getEnvAsInt("PORT", cfg.Server.Port)
	cfg.Server.BaseURL = getEnv("BASE_URL", cfg.Server.BaseURL)
	cfg.Server.AllowedOrigins = getEnv("ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)

	cfg.Database.Source = getEnv("DATABASE_URL", cfg.Database.Source)
	cfg.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)

	cfg.Security.JWTSecret = getEnv("JWT_SECRET", cfg.Security.JWTSecret)
	cfg.Security.BCryptCost = getEnvAsInt("BCRYPT_COST", cfg.Security.BCryptCost)
	cfg.Security.TokenDuration = getEnvAsDuration("JWT_EXPIRES_IN", cfg.Security.TokenDuration)

	cfg.Mail.Host = getEnv("SMTP_HOST", cfg.Mail.Host)
	cfg.Mail.Port = getEnvAsInt("SMTP_PORT", cfg.Mail.Port)
	cfg.Mail.Username = getEnv("SMTP_EMAIL", cfg.Mail.Username)
	cfg.Mail.Password = getEnv("SMTP_PASSWORD", cfg.Mail.Password)
	cfg.Mail.FromName = getEnv("FROM_NAME", cfg.Mail.FromName)
	cfg.Mail.FromEmail = getEnv("FROM_EMAIL", cfg.Mail.FromEmail)

	cfg.Storage.UploadDir = getEnv("UPLOAD_DIR", cfg.Storage.UploadDir)

	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	if env == "production" {
		cfg.Observability.Logging.Format = "json"
	}
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)

	return &cfg
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Location resolves the configured timezone used to decide calendar days.
func (c *Config) Location() (*time.Location, error) {
	switch c.App.Timezone {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.App.Timezone)
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if c.IsProduction() && !c.Mail.Enabled() {
		errs = append(errs, "mail config: smtp_host is required in production")
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("app config: invalid timezone: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}
