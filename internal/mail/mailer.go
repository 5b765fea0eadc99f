package mail

import (
	"context"

	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"
)

// Message is an outbound plain-text mail.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer sends mail. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// MailgunMailer delivers mail through the Mailgun API.
type MailgunMailer struct {
	client *mailgun.MailgunImpl
	logger *zap.Logger
}

// NewMailgunMailer constructs a Mailgun-backed mailer.
func NewMailgunMailer(domain, apiKey string, logger *zap.Logger) *MailgunMailer {
	return &MailgunMailer{client: mailgun.NewMailgun(domain, apiKey), logger: logger}
}

// Send delivers the message.
func (m *MailgunMailer) Send(ctx context.Context, msg *Message) error {
	message := m.client.NewMessage(msg.From, msg.Subject, msg.Body, msg.To...)
	resp, id, err := m.client.Send(ctx, message)
	if err != nil {
		return err
	}
	m.logger.Debug("mail sent", zap.String("id", id), zap.String("response", resp))
	return nil
}

// LogMailer logs instead of sending; used when no Mailgun API key is
// configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs the logging mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message.
func (m *LogMailer) Send(_ context.Context, msg *Message) error {
	m.logger.Info("mail delivery skipped (no mailgun credentials)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
