package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/mailer"
	"github.com/frahmantamala/dayflow/pkg/logger"
)

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Mail delivery commands",
}

var mailTestCmd = &cobra.Command{
	Use:   "test [address]",
	Short: "Send a test email through the configured relay",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		initLogger(cfg)
		lg := logger.LoggerWrapper()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		msg := mailer.Message{
			To:      args[0],
			Subject: "Dayflow HRMS - Test email",
			Text:    fmt.Sprintf("This is a test email sent at %s.", time.Now().Format(time.RFC1123)),
		}
		if err := newMailSender(cfg, lg).Send(ctx, msg); err != nil {
			return err
		}

		lg.Info("test email dispatched", "to", args[0], "smtp", cfg.Mail.Enabled())
		return nil
	},
}

// newMailSender returns the SMTP sender when a relay is configured, and a
// log-only sender otherwise.
func newMailSender(cfg *internal.Config, lg *slog.Logger) mailer.Sender {
	if !cfg.Mail.Enabled() {
		lg.Warn("SMTP not configured, emails are written to the log")
		return mailer.NewLogSender(lg)
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:      cfg.Mail.Host,
		Port:      cfg.Mail.Port,
		Username:  cfg.Mail.Username,
		Password:  cfg.Mail.Password,
		FromName:  cfg.Mail.FromName,
		FromEmail: cfg.Mail.FromEmail,
	}, lg)
}

func init() {
	mailCmd.AddCommand(mailTestCmd)
	rootCmd.AddCommand(mailCmd)
}
