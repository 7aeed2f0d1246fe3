// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/dalemusser/waffle/pantry/email"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned by Send when no SMTP host is set.
var ErrNotConfigured = errors.New("mailer: smtp host not configured")

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Email is one outgoing message. TextBody is required; HTMLBody is optional.
type Email struct {
	To       string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
}

// sender is the part of *email.Sender the Mailer uses.
type sender interface {
	Send(ctx context.Context, msg email.Message) error
}

// Mailer sends email through an SMTP relay.
type Mailer struct {
	host   string
	log    *zap.Logger
	sender sender
}

// New creates a Mailer. A Mailer with an empty Host is valid; Enabled
// reports false and Send returns ErrNotConfigured.
func New(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{
		host: cfg.Host,
		log:  logger,
		sender: email.NewSender(email.Config{
			Host:        cfg.Host,
			Port:        cfg.Port,
			Username:    cfg.Username,
			Password:    cfg.Password,
			FromAddress: cfg.From,
			FromName:    cfg.FromName,
		}),
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.host != ""
}

// Send delivers e. The SMTP exchange is abandoned when ctx ends first.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if !m.Enabled() {
		return ErrNotConfigured
	}
	if _, err := mail.ParseAddress(e.To); err != nil {
		return fmt.Errorf("mailer: bad recipient %q: %w", e.To, err)
	}

	err := m.sender.Send(ctx, email.Message{
		To:       []string{e.To},
		ReplyTo:  e.ReplyTo,
		Subject:  e.Subject,
		TextBody: e.TextBody,
		HTMLBody: e.HTMLBody,
	})
	if err != nil {
		m.log.Warn("email send failed", zap.String("to", e.To), zap.Error(err))
		return err
	}
	m.log.Info("email sent", zap.String("to", e.To), zap.String("subject", e.Subject))
	return nil
}
