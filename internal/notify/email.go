// Package notify delivers due-date reminders by e-mail.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"utang/internal/config"
	applog "utang/internal/log"
	"utang/internal/services"
)

type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// EmailSender sends reminders through an SMTP relay.
type EmailSender struct {
	cfg    *config.Config
	logger *applog.Logger
	send   sendFunc
}

func NewEmailSender(cfg *config.Config, logger *applog.Logger) *EmailSender {
	if logger == nil {
		logger = applog.Discard()
	}
	return &EmailSender{
		cfg:    cfg,
		logger: logger.WithComponent(applog.ComponentReminder),
		send:   (*email.Email).Send,
	}
}

// NotifyDue sends one reminder. net/smtp has no context support, so ctx is
// only checked before dialing.
func (s *EmailSender) NotifyDue(ctx context.Context, r services.Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{r.Email}
	e.Subject = Subject(r)
	e.Text = []byte(Body(r))

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send reminder",
			applog.FieldUserID, r.UserID,
			applog.FieldDebtID, r.Item.DebtID,
			applog.FieldError, err)
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	s.logger.InfoContext(ctx, "Reminder sent",
		applog.FieldUserID, r.UserID,
		applog.FieldDebtID, r.Item.DebtID,
		applog.FieldOperation, applog.OpNotify)
	return nil
}

func Subject(r services.Reminder) string {
	if r.Item.DaysUntilDue == 0 {
		return fmt.Sprintf("Payment due today: %s", r.Item.Name)
	}
	return fmt.Sprintf("Upcoming payment: %s due in %d days", r.Item.Name, r.Item.DaysUntilDue)
}

func Body(r services.Reminder) string {
	name := r.FullName
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Your payment for %s is due on %s.\n", r.Item.Name, r.Item.DueDate.Format("January 2, 2006"))
	fmt.Fprintf(&b, "Minimum payment: %s\n", r.Item.MinimumPayment.Format())
	fmt.Fprintf(&b, "Remaining balance: %s\n", r.Item.RemainingBalance.Format())
	b.WriteString("\nStay on track,\nutang")
	return b.String()
}
