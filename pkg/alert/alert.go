// Package alert delivers operational alerts, such as the store circuit
// breaker tripping, to humans. Alerting is optional and disabled unless
// configured.
package alert

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/soundprediction/memento/pkg/config"
)

// Alerter sends a single alert message with a subject line.
type Alerter interface {
	Alert(subject, message string) error
}

// EmailAlerter implements Alerter over SMTP.
type EmailAlerter struct {
	cfg config.AlertConfig
}

// NewEmailAlerter creates an alerter that mails the configured recipients.
func NewEmailAlerter(cfg config.AlertConfig) *EmailAlerter {
	return &EmailAlerter{cfg: cfg}
}

// Alert sends an email with the given subject and message. It is a no-op
// when alerting is disabled in the configuration.
func (a *EmailAlerter) Alert(subject, message string) error {
	if !a.cfg.Enabled {
		return nil
	}

	auth := smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", a.cfg.SMTPHost, a.cfg.SMTPPort)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		strings.Join(a.cfg.To, ","), subject, message))

	if err := smtp.SendMail(addr, auth, a.cfg.From, a.cfg.To, msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	return nil
}

// NoOpAlerter discards alerts. Used when alerting is disabled.
type NoOpAlerter struct{}

func (n *NoOpAlerter) Alert(subject, message string) error {
	return nil
}
