package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender logs the recipient, subject and a body preview, and reports
// success. It is used when SMTP credentials are absent.
type LogSender struct{}

// Send implements Sender.
func (LogSender) Send(ctx context.Context, msg Message) error {
	zerolog.Ctx(ctx).Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body_preview", preview(msg.Body)).
		Msg("email not configured; logging message instead of sending")
	return nil
}

// Configured implements Sender.
func (LogSender) Configured() bool { return false }
