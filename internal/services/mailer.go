package services

import (
	"context"
	"fmt"

	"github.com/yungbote/unibridge-backend/internal/platform/logger"
	"github.com/yungbote/unibridge-backend/internal/platform/sendgrid"
	"github.com/yungbote/unibridge-backend/internal/platform/ses"
)

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers transactional e-mail.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

type sendGridMailer struct {
	client sendgrid.Client
}

func NewSendGridMailer(client sendgrid.Client) Mailer {
	return &sendGridMailer{client: client}
}

func (m *sendGridMailer) Send(ctx context.Context, msg Email) error {
	_, err := m.client.Send(ctx, sendgrid.SendEmailRequest{
		To:      []sendgrid.EmailAddress{{Email: msg.To}},
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	})
	return err
}

type sesMailer struct {
	client *ses.Client
}

func NewSESMailer(client *ses.Client) Mailer {
	return &sesMailer{client: client}
}

func (m *sesMailer) Send(ctx context.Context, msg Email) error {
	_, err := m.client.Send(ctx, ses.Message{To: msg.To, Subject: msg.Subject, Text: msg.Text, HTML: msg.HTML})
	return err
}

// LogMailer writes messages to the log instead of delivering them. Used in development.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log.With("service", "LogMailer")}
}

func (m *LogMailer) Send(_ context.Context, msg Email) error {
	if msg.To == "" {
		return fmt.Errorf("mail recipient required")
	}
	m.log.Info("Mail not delivered (log mailer)", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
