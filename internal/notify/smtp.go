package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-notes-summarizer/internal/config"
)

// sendMailFn is the transport; tests replace it.
var sendMailFn = smtp.SendMail

// SMTPSender delivers plain-text mail through an authenticated SMTP relay.
type SMTPSender struct {
	from string
	addr string
	auth smtp.Auth
	now  func() time.Time
}

// NewSMTPSender uses PLAIN auth against cfg.SMTPHost:cfg.SMTPPort.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		from: cfg.User,
		addr: net.JoinHostPort(cfg.SMTPHost, fmt.Sprint(cfg.SMTPPort)),
		auth: smtp.PlainAuth("", cfg.User, cfg.Password, cfg.SMTPHost),
		now:  time.Now,
	}
}

// Configured implements Sender.
func (s *SMTPSender) Configured() bool { return true }

// Send implements Sender. Failures are logged together with a preview of the
// message and returned.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := s.compose(msg)
	if err != nil {
		return fmt.Errorf("compose email: %w", err)
	}
	if err := sendMailFn(s.addr, s.auth, s.from, []string{msg.To}, raw); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("to", msg.To).
			Str("subject", msg.Subject).
			Str("body_preview", preview(msg.Body)).
			Msg("failed email")
		return fmt.Errorf("send email: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

// compose renders msg as an RFC 5322 text/plain message.
func (s *SMTPSender) compose(msg Message) ([]byte, error) {
	var h mail.Header
	h.SetDate(s.now())
	h.SetAddressList("From", []*mail.Address{{Address: s.from}})
	h.SetAddressList("To", []*mail.Address{{Address: msg.To}})
	h.SetSubject(msg.Subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, msg.Body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
