package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-notes-summarizer/internal/config"
)

var emailCfg = config.EmailConfig{
	User:     "notes@example.com",
	Password: "app-password",
	SMTPHost: "smtp.example.com",
	SMTPPort: 587,
}

func captureLogs(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	return l.WithContext(context.Background()), &buf
}

func TestNew_PicksSenderByCredentials(t *testing.T) {
	if s := New(emailCfg); !s.Configured() {
		t.Fatalf("expected SMTP sender")
	}
	partial := emailCfg
	partial.Password = ""
	if s := New(partial); s.Configured() {
		t.Fatalf("expected log-only sender without password")
	}
}

func TestParseAddress(t *testing.T) {
	good := map[string]string{
		"bob@example.com":             "bob@example.com",
		"  bob@example.com ":          "bob@example.com",
		"Bob Smith <bob@example.com>": "bob@example.com",
	}
	for in, want := range good {
		got, err := ParseAddress(in)
		if err != nil || got != want {
			t.Fatalf("ParseAddress(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "not-an-email", "a@b.com, c@d.com", "@@"} {
		if _, err := ParseAddress(in); err == nil {
			t.Fatalf("ParseAddress(%q) should fail", in)
		}
	}
}

func TestLogSender_LogsPreviewAndSucceeds(t *testing.T) {
	ctx, buf := captureLogs(t)
	body := strings.Repeat("x", 150)

	if err := (LogSender{}).Send(ctx, Message{To: "a@b.io", Subject: "S", Body: body}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"to":"a@b.io"`) || !strings.Contains(out, `"subject":"S"`) {
		t.Fatalf("missing fields in %s", out)
	}
	if !strings.Contains(out, strings.Repeat("x", 100)+"...") || strings.Contains(out, strings.Repeat("x", 101)) {
		t.Fatalf("preview should be the first 100 chars: %s", out)
	}
}

func TestSMTPSender_ComposesAndSends(t *testing.T) {
	orig := sendMailFn
	t.Cleanup(func() { sendMailFn = orig })

	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  []byte
	)
	sendMailFn = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	s := NewSMTPSender(emailCfg)
	s.now = func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) }
	err := s.Send(context.Background(), Message{
		To:      "team@example.com",
		Subject: "AI Meeting Notes Summary: standup.txt",
		Body:    "FYI\n\nShip Friday.",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || gotFrom != "notes@example.com" || len(gotTo) != 1 || gotTo[0] != "team@example.com" {
		t.Fatalf("unexpected envelope: addr=%q from=%q to=%v", gotAddr, gotFrom, gotTo)
	}

	r, err := mail.CreateReader(bytes.NewReader(gotMsg))
	if err != nil {
		t.Fatalf("parse sent message: %v", err)
	}
	subj, _ := r.Header.Subject()
	if subj != "AI Meeting Notes Summary: standup.txt" {
		t.Fatalf("subject = %q", subj)
	}
	p, err := r.NextPart()
	if err != nil {
		t.Fatalf("body part: %v", err)
	}
	body, _ := io.ReadAll(p.Body)
	if strings.ReplaceAll(string(body), "\r\n", "\n") != "FYI\n\nShip Friday." {
		t.Fatalf("body = %q", body)
	}
}

func TestSMTPSender_FailureIsLoggedAndReturned(t *testing.T) {
	orig := sendMailFn
	t.Cleanup(func() { sendMailFn = orig })
	sendMailFn = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("535 authentication failed")
	}

	ctx, buf := captureLogs(t)
	err := NewSMTPSender(emailCfg).Send(ctx, Message{To: "a@b.io", Subject: "S", Body: "hello"})
	if err == nil || !strings.Contains(err.Error(), "535") {
		t.Fatalf("expected send error, got %v", err)
	}
	if !strings.Contains(buf.String(), "failed email") || !strings.Contains(buf.String(), `"body_preview":"hello"`) {
		t.Fatalf("failure not logged: %s", buf.String())
	}
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewSMTPSender(emailCfg).Send(ctx, Message{To: "a@b.io"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
