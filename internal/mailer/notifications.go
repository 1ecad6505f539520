package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/dayflow/internal/core/events"
)

// Recipients resolves a user id to a mailbox.
type Recipients interface {
	Recipient(ctx context.Context, userID int64) (name, email string, err error)
}

type Notifier struct {
	sender     Sender
	recipients Recipients
	logger     *slog.Logger
}

func NewNotifier(sender Sender, recipients Recipients, logger *slog.Logger) *Notifier {
	return &Notifier{sender: sender, recipients: recipients, logger: logger}
}

func (n *Notifier) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeLeaveStatusChanged, n.onLeaveStatusChanged)
	bus.Subscribe(events.EventTypePayrollPaid, n.onPayrollPaid)
}

func (n *Notifier) onLeaveStatusChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	name, email, err := n.recipients.Recipient(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient %d: %w", e.UserID, err)
	}

	body := fmt.Sprintf("Hello %s,\n\nYour %s leave from %s to %s has been %s.",
		name, e.LeaveType, e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"), e.Status)
	if e.AdminComment != "" {
		body += fmt.Sprintf("\n\nComment: %s", e.AdminComment)
	}

	return n.sender.Send(ctx, Message{
		To:      email,
		Subject: fmt.Sprintf("Dayflow HRMS - Leave %s", e.Status),
		Text:    body,
	})
}

func (n *Notifier) onPayrollPaid(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PayrollPaidEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	name, email, err := n.recipients.Recipient(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient %d: %w", e.UserID, err)
	}

	return n.sender.Send(ctx, Message{
		To:      email,
		Subject: fmt.Sprintf("Dayflow HRMS - Salary for %02d/%d paid", e.Month, e.Year),
		Text: fmt.Sprintf("Hello %s,\n\nYour salary for %02d/%d has been paid on %s. Net amount: %.2f.",
			name, e.Month, e.Year, e.PaidOn.Format("2006-01-02"), e.NetSalary),
	})
}
