package notify

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	mail "github.com/go-mail/mail/v2"

	"github.com/confdesk/review-engine/internal/config"
	"github.com/confdesk/review-engine/internal/domain"
)

// Mailer emails reviewers when submissions land on their desk. Delivery is
// best-effort: failures are logged and never reach the assignment path.
type Mailer struct {
	log    *slog.Logger
	dialer *mail.Dialer
	from   string
}

// New returns a Mailer, or nil when SMTP is not configured so callers can
// skip notification wiring entirely.
func New(log *slog.Logger, cfg config.SMTP) *Mailer {
	if cfg.Host == "" || cfg.From == "" {
		log.Info("notify: smtp not configured, assignment notifications disabled")
		return nil
	}

	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}

	return &Mailer{
		log:    log,
		dialer: d,
		from:   cfg.From,
	}
}

func (m *Mailer) AssignmentCreated(reviewer domain.Reviewer, submission *domain.Submission) {
	if reviewer.Email == "" {
		return
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", reviewer.Email)
	msg.SetHeader("Subject", fmt.Sprintf("New submission assigned: %s", submission.Title))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nThe submission %q (topic: %s) has been assigned to you for review.\n",
		reviewer.Name, submission.Title, submission.Topic,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Warn("notify: failed to send assignment notification",
			slog.String("reviewer_id", reviewer.ID),
			slog.String("submission_id", submission.ID),
			slog.Any("error", err),
		)
	}
}
