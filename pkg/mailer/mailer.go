package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"

	"github.com/siamcode/standupstrip-backend/pkg/config"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

// Message is a single outbound email. Kind labels the delivery metrics
// (invitation, weekly_digest, reminder).
type Message struct {
	To      string
	Subject string
	HTML    string
	Kind    string
}

// Sender delivers one message and reports the outcome. Callers that need a
// truthful delivery result use Send directly; fire-and-forget callers go
// through the Pool.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail over SMTP with STARTTLS. Each send opens a fresh
// connection so a stale keep-alive socket cannot poison later deliveries.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Configured() {
		return fmt.Errorf("smtp not configured")
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("empty recipient")
	}

	server := mail.NewSMTPClient()
	server.Host = s.cfg.Host
	server.Port = s.cfg.Port
	server.Username = s.cfg.Username
	server.Password = s.cfg.Password
	server.Encryption = mail.EncryptionSTARTTLS
	server.TLSConfig = &tls.Config{InsecureSkipVerify: s.cfg.SkipTLSVerify}
	server.ConnectTimeout = s.cfg.ConnectTimeout
	server.SendTimeout = s.cfg.SendTimeout

	if deadline, ok := ctx.Deadline(); ok {
		remaining := deadline.Sub(nowFunc())
		if remaining <= 0 {
			return ctx.Err()
		}
		if remaining < server.ConnectTimeout {
			server.ConnectTimeout = remaining
		}
	}

	client, err := server.Connect()
	if err != nil {
		return fmt.Errorf("smtp connect: %w", err)
	}
	defer client.Close()

	email := mail.NewMSG()
	email.SetFrom(s.cfg.From).
		AddTo(msg.To).
		SetSubject(msg.Subject).
		SetBody(mail.TextHTML, msg.HTML)
	if email.Error != nil {
		return fmt.Errorf("build email: %w", email.Error)
	}

	if err := email.Send(client); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
