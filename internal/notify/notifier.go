package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskr-api/internal/job"
	"github.com/phrazzld/taskr-api/internal/platform/logger"
)

// Job types submitted by the Notifier.
const (
	JobTypeWelcomeMail      = "welcome_mail"
	JobTypeCancellationMail = "cancellation_mail"
)

// Submitter accepts detached jobs. *job.Runner satisfies it.
type Submitter interface {
	Submit(j job.Job) error
}

// Notifier queues account emails for background delivery.
type Notifier struct {
	mailer    Mailer
	submitter Submitter
	logger    *slog.Logger
}

// NewNotifier creates a Notifier delivering through mailer on submitter's workers.
func NewNotifier(mailer Mailer, submitter Submitter, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		mailer:    mailer,
		submitter: submitter,
		logger:    log.With(slog.String("component", "notifier")),
	}
}

// WelcomeMessage builds the message sent after registration.
func WelcomeMessage(email, name string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: "Welcome to Taskr",
		Text:    fmt.Sprintf("Hello %s, thank you for joining us.", name),
	}
}

// CancellationMessage builds the message sent after an account is deleted.
func CancellationMessage(email, name string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: "Sorry to see you go",
		Text:    fmt.Sprintf("Hello %s, we're sorry you are leaving. Please let us know why.", name),
	}
}

// SendWelcome queues the welcome message. It never blocks on delivery and
// never reports failure to the caller.
func (n *Notifier) SendWelcome(ctx context.Context, email, name string) {
	n.submit(ctx, JobTypeWelcomeMail, WelcomeMessage(email, name))
}

// SendCancellation queues the cancellation message. It never blocks on
// delivery and never reports failure to the caller.
func (n *Notifier) SendCancellation(ctx context.Context, email, name string) {
	n.submit(ctx, JobTypeCancellationMail, CancellationMessage(email, name))
}

func (n *Notifier) submit(ctx context.Context, jobType string, msg Message) {
	// The job outlives the request, so it keeps the request's logger but not
	// its cancellation.
	log := logger.FromContextOrDefault(ctx, n.logger)

	j := job.NewFunc(jobType, func(jobCtx context.Context) error {
		return n.mailer.Send(logger.WithLogger(jobCtx, log), msg)
	})
	if err := n.submitter.Submit(j); err != nil {
		log.Warn("mail job dropped",
			slog.String("job_type", jobType),
			slog.String("error", err.Error()))
		return
	}
	log.Debug("mail job queued",
		slog.String("job_type", jobType),
		slog.String("job_id", j.ID().String()))
}
