package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/kevinaaaquil/digilib/models"
)

// Notifier tells the librarian about a new pre-booking.
type Notifier interface {
	NotifyPreBooking(ctx context.Context, p models.PreBooking) error
}

// LogNotifier only logs. It is used when SMTP is not configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) NotifyPreBooking(_ context.Context, p models.PreBooking) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("new pre-booking", "id", p.ID, "book", p.BookTitle, "student", p.StudentName)
	return nil
}

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// sender is the part of *mail.Dialer MailNotifier needs.
type sender interface {
	DialAndSend(m ...*mail.Message) error
}

// MailNotifier emails the admin address through go-mail.
type MailNotifier struct {
	cfg    SMTPConfig
	dialer sender
}

func NewMailNotifier(cfg SMTPConfig) *MailNotifier {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.Timeout = 10 * time.Second
	return &MailNotifier{cfg: cfg, dialer: d}
}

func (n *MailNotifier) message(p models.PreBooking) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To)
	m.SetHeader("Subject", "Pre-booking: "+p.BookTitle)
	m.SetBody("text/plain", fmt.Sprintf(
		"%s asked to reserve %q (book %s) at %s.\nStatus: %s\nRequest id: %s\n",
		p.StudentName, p.BookTitle, p.BookID, p.Time.Format(time.RFC1123), p.Status, p.ID,
	))
	return m
}

// NotifyPreBooking sends one message. ctx is checked before dialing; the
// dialer's own timeout bounds the send.
func (n *MailNotifier) NotifyPreBooking(ctx context.Context, p models.PreBooking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.dialer.DialAndSend(n.message(p)); err != nil {
		return fmt.Errorf("send pre-booking mail: %w", err)
	}
	return nil
}
