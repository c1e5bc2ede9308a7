package mails

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/casspea/casspea-backend/pkg/config"
	"github.com/casspea/casspea-backend/pkg/logger"
)

// SMTPSender delivers messages through a plain-auth SMTP relay.
type SMTPSender struct {
	cfg config.MailConfig
}

func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host required")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("from address required")
	}
	return &SMTPSender{cfg: cfg}, nil
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	contentType := "text/plain; charset=UTF-8"
	if msg.HTML {
		contentType = "text/html; charset=UTF-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	fmt.Fprintf(&b, "\r\n%s\r\n", msg.Body)

	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender is the development transport. It records the message instead of
// delivering it.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"recipient": msg.To,
			"subject":   msg.Subject,
		})
		s.logg.Info(ctx, "email suppressed in development")
	}
	return nil
}
