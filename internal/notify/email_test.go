package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/jordan-wright/email"

	"utang/internal/config"
	"utang/internal/core"
	"utang/internal/services"
)

func testReminder(days int) services.Reminder {
	return services.Reminder{
		UserID:   "u1",
		FullName: "Maria Santos",
		Email:    "maria@example.com",
		Item: core.DueItem{
			DebtID:           "d1",
			Name:             "BPI Credit Card",
			DueDate:          time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
			DaysUntilDue:     days,
			MinimumPayment:   core.NewMoney(2_250, 0),
			RemainingBalance: core.NewMoney(40_000, 0),
		},
	}
}

func TestEmailSender_NotifyDue(t *testing.T) {
	cfg := &config.Config{
		SMTPHost: "smtp.example.com", SMTPPort: 587,
		SMTPUsername: "mailer", SMTPPassword: "pw",
		SenderEmail: "utang@example.com",
	}
	s := NewEmailSender(cfg, nil)

	var (
		gotMail *email.Email
		gotAddr string
		gotAuth smtp.Auth
	)
	s.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		gotMail, gotAddr, gotAuth = e, addr, auth
		return nil
	}

	if err := s.NotifyDue(context.Background(), testReminder(3)); err != nil {
		t.Fatal(err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotAuth == nil {
		t.Error("credentials configured but no auth used")
	}
	if gotMail.From != "utang@example.com" || len(gotMail.To) != 1 || gotMail.To[0] != "maria@example.com" {
		t.Errorf("unexpected envelope from=%q to=%v", gotMail.From, gotMail.To)
	}
	if gotMail.Subject != "Upcoming payment: BPI Credit Card due in 3 days" {
		t.Errorf("subject = %q", gotMail.Subject)
	}
	body := string(gotMail.Text)
	for _, want := range []string{"Hi Maria Santos", "February 15, 2025", "₱2,250.00", "₱40,000.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestEmailSender_NoAuthWithoutUsername(t *testing.T) {
	s := NewEmailSender(&config.Config{SMTPHost: "relay", SMTPPort: 25, SenderEmail: "a@b.c"}, nil)
	s.send = func(_ *email.Email, _ string, auth smtp.Auth) error {
		if auth != nil {
			t.Error("anonymous relay should not get auth")
		}
		return nil
	}
	if err := s.NotifyDue(context.Background(), testReminder(0)); err != nil {
		t.Fatal(err)
	}
}

func TestEmailSender_Errors(t *testing.T) {
	s := NewEmailSender(&config.Config{SMTPHost: "relay", SMTPPort: 25}, nil)
	smtpErr := errors.New("421 try again later")
	s.send = func(*email.Email, string, smtp.Auth) error { return smtpErr }

	if err := s.NotifyDue(context.Background(), testReminder(1)); !errors.Is(err, smtpErr) {
		t.Fatalf("expected wrapped smtp error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.NotifyDue(ctx, testReminder(1)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSubject(t *testing.T) {
	if got := Subject(testReminder(0)); got != "Payment due today: BPI Credit Card" {
		t.Errorf("Subject = %q", got)
	}
	r := testReminder(2)
	r.FullName = ""
	if !strings.HasPrefix(Body(r), "Hi there,") {
		t.Errorf("Body should fall back to a generic greeting")
	}
}
