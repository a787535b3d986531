// Package mailx sends transactional email over SMTP.
package mailx

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender delivers a single HTML email. Implementations must be safe for
// concurrent use; the notification dispatcher calls Send from detached
// goroutines.
type Sender interface {
	Send(to, subject, html string) error
}

// SMTPConfig holds the connection settings for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through a standard SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender builds a sender from config. Dialing happens per-send; the
// volumes here (invitation emails) don't justify a pooled connection.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("mailx: SMTP host and port are required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPSender{cfg: cfg}, nil
}

func (s *SMTPSender) Send(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("mailx: failed to send email: %w", err)
	}

	return nil
}

// NopSender discards all mail. Used when SMTP is not configured (dev) so the
// rest of the pipeline behaves identically.
type NopSender struct{}

func (NopSender) Send(to, subject, html string) error { return nil }
