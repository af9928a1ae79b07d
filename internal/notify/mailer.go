package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskr-api/internal/config"
	"github.com/phrazzld/taskr-api/internal/platform/logger"
	"github.com/phrazzld/taskr-api/internal/redact"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrDeliveryFailed is returned when the mail provider rejects a message.
var ErrDeliveryFailed = errors.New("mail delivery failed")

// Message is a plain-text email to a single recipient.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer returns a SendGrid mailer when an API key is configured and a
// LogMailer otherwise.
func NewMailer(cfg config.MailConfig, log *slog.Logger) Mailer {
	if cfg.SendGridAPIKey == "" {
		return NewLogMailer(log)
	}
	return NewSendGridMailer(cfg, log)
}

// sendClient is the part of the SendGrid client the mailer uses.
type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer delivers mail through the SendGrid v3 API.
type SendGridMailer struct {
	client sendClient
	from   *mail.Email
	logger *slog.Logger
}

// NewSendGridMailer creates a mailer authenticated with cfg.SendGridAPIKey.
// Requests are bounded by the context passed to Send.
func NewSendGridMailer(cfg config.MailConfig, log *slog.Logger) *SendGridMailer {
	return newSendGridMailer(sendgrid.NewSendClient(cfg.SendGridAPIKey), cfg, log)
}

func newSendGridMailer(client sendClient, cfg config.MailConfig, log *slog.Logger) *SendGridMailer {
	if log == nil {
		log = slog.Default()
	}
	return &SendGridMailer{
		client: client,
		from:   mail.NewEmail(cfg.FromName, cfg.FromAddress),
		logger: log.With(slog.String("component", "sendgrid_mailer")),
	}
}

// Send implements Mailer.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	to := mail.NewEmail(msg.ToName, msg.To)
	email := mail.NewSingleEmail(m.from, msg.Subject, to, msg.Text, "")

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Warn("mail provider rejected message",
			slog.Int("status", resp.StatusCode),
			slog.String("body", redact.String(resp.Body)))
		return fmt.Errorf("%w: provider returned status %d", ErrDeliveryFailed, resp.StatusCode)
	}

	log.Debug("mail accepted by provider",
		slog.String("subject", msg.Subject),
		slog.Int("status", resp.StatusCode))
	return nil
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}
	return &LogMailer{logger: log.With(slog.String("component", "log_mailer"))}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	logger.FromContextOrDefault(ctx, m.logger).Info("mail not sent, no provider configured",
		slog.String("to", redact.String(msg.To)),
		slog.String("subject", msg.Subject))
	return nil
}
