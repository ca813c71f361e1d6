// Package notify delivers shared summaries by email. SMTPSender sends real
// mail; LogSender stands in when no credentials are configured and only
// records what would have been sent.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/tbourn/go-notes-summarizer/internal/config"
)

// previewLen is how many characters of a body end up in logs.
const previewLen = 100

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	// Configured reports whether messages actually leave the process.
	Configured() bool
}

// New returns an SMTPSender when both EMAIL_USER and EMAIL_PASS are set,
// otherwise a LogSender.
func New(cfg config.EmailConfig) Sender {
	if cfg.Configured() {
		return NewSMTPSender(cfg)
	}
	return LogSender{}
}

// ParseAddress validates a single RFC 5322 address and returns its bare
// addr-spec ("Bob <bob@x.io>" yields "bob@x.io").
func ParseAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty address")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return "", err
	}
	if !strings.Contains(addr.Address, "@") {
		return "", fmt.Errorf("address %q has no domain", s)
	}
	return addr.Address, nil
}

func preview(body string) string {
	r := []rune(body)
	if len(r) <= previewLen {
		return body
	}
	return string(r[:previewLen]) + "..."
}
