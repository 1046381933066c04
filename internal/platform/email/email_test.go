package email

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"hrpayroll/internal/platform/config"
)

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: false, SMTPHost: "smtp.example.com"})
	if _, ok := mailer.(noopMailer); !ok {
		t.Fatalf("expected noop mailer, got %T", mailer)
	}
	if err := mailer.Send(context.Background(), "a@example.com", "b@example.com", "s", "b"); err != nil {
		t.Fatalf("noop send returned %v", err)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := buildMessage("hr@example.com", "sarah@example.com", "Leave approved", "Your leave was approved.")
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("write error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"From: hr@example.com", "To: sarah@example.com", "Subject: Leave approved", "Your leave was approved."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected message to contain %q, got:\n%s", want, out)
		}
	}
}
