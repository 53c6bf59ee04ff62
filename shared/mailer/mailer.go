package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned by Send when SMTP credentials are missing
var ErrNotConfigured = errors.New("email not configured: missing SMTP user or password")

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	FromName string
}

// Attachment is an in-memory file attached to a message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outbound email
type Message struct {
	To          string
	ReplyTo     string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Mailer sends HTML email over SMTP with gomail
type Mailer struct {
	config *Config
	dialer *gomail.Dialer
	logger *slog.Logger
}

// New creates a mailer. Port 465 uses implicit TLS, anything else STARTTLS.
func New(config *Config, logger *slog.Logger) *Mailer {
	dialer := gomail.NewDialer(config.Host, config.Port, config.User, config.Password)
	dialer.SSL = config.Port == 465
	dialer.TLSConfig = &tls.Config{ServerName: config.Host, MinVersion: tls.VersionTLS12}

	return &Mailer{
		config: config,
		dialer: dialer,
		logger: logger,
	}
}

// Enabled reports whether credentials are present
func (m *Mailer) Enabled() bool {
	return m.config.User != "" && m.config.Password != ""
}

// Send delivers msg, giving up when ctx is done.
// An abandoned dial keeps running in the background until the SMTP server answers.
func (m *Mailer) Send(ctx context.Context, msg *Message) error {
	if !m.Enabled() {
		return ErrNotConfigured
	}

	gm := m.build(msg)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(gm)
	}()

	select {
	case err := <-done:
		if err != nil {
			m.logger.Error("Failed to send email",
				slog.String("subject", msg.Subject),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to send email: %w", err)
		}
		m.logger.Info("Email sent",
			slog.String("subject", msg.Subject),
			slog.Int("attachments", len(msg.Attachments)),
		)
		return nil
	case <-ctx.Done():
		m.logger.Warn("Email send timed out",
			slog.String("subject", msg.Subject),
		)
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}

func (m *Mailer) build(msg *Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", m.config.User, m.config.FromName)
	gm.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		gm.SetHeader("Reply-To", msg.ReplyTo)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTMLBody)

	for _, att := range msg.Attachments {
		data := att.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if att.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {att.ContentType},
			}))
		}
		gm.Attach(att.Filename, settings...)
	}

	return gm
}
