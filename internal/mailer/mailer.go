// Package mailer sends account emails.
package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type Mailer interface {
	SendVerification(ctx context.Context, to, link string) error
}

// New returns a SendGrid mailer, or a logging one when apiKey is empty.
func New(apiKey, from string, logger *zap.Logger) Mailer {
	if apiKey == "" {
		return &LogMailer{logger: logger}
	}
	return &SendGrid{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Task & Habit Tracker", from),
	}
}

type SendGrid struct {
	client *sendgrid.Client
	from   *mail.Email
}

func (m *SendGrid) SendVerification(ctx context.Context, to, link string) error {
	subject := "Confirm your email"
	plain := "Confirm your account: " + link
	html := fmt.Sprintf(`<p>Confirm your account: <a href="%s">%s</a></p>`, link, link)

	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), plain, html)
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer пишет ссылку в лог вместо отправки письма (для разработки)
type LogMailer struct {
	logger *zap.Logger
}

func (m *LogMailer) SendVerification(_ context.Context, to, link string) error {
	m.logger.Info("verification email not sent, no SENDGRID_API_KEY",
		zap.String("to", to),
		zap.String("link", link),
	)
	return nil
}
