package mail

import (
	"strings"
	"testing"
	"time"
)

func TestOTPMessage(t *testing.T) {
	msg, err := OTPMessage("a@x.com", "482913", 10*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Subject != "Your Verification Code" {
		t.Fatalf("unexpected subject: %q", msg.Subject)
	}
	if len(msg.To) != 1 || msg.To[0] != "a@x.com" {
		t.Fatalf("unexpected recipients: %v", msg.To)
	}
	for _, part := range []string{msg.Body, msg.HTML} {
		if !strings.Contains(part, "482913") {
			t.Fatalf("expected code in %q", part)
		}
		if !strings.Contains(part, "10 minutes") {
			t.Fatalf("expected expiry in %q", part)
		}
	}
}

func TestConfirmationMessageEscapesEmail(t *testing.T) {
	msg, err := ConfirmationMessage("<b>@x.com", "https://app.example.com/dashboard")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Subject != "Welcome to Dashboard App" {
		t.Fatalf("unexpected subject: %q", msg.Subject)
	}
	if strings.Contains(msg.HTML, "<b>@x.com") {
		t.Fatal("expected email to be escaped in html")
	}
	if !strings.Contains(msg.HTML, "https://app.example.com/dashboard") {
		t.Fatalf("expected dashboard link, got %q", msg.HTML)
	}
}

func TestHumanizeDuration(t *testing.T) {
	cases := map[time.Duration]string{
		30 * time.Second: "1 minute",
		10 * time.Minute: "10 minutes",
		time.Hour:        "1 hour",
		3 * time.Hour:    "3 hours",
		90 * time.Minute: "90 minutes",
	}
	for in, want := range cases {
		if got := humanizeDuration(in); got != want {
			t.Fatalf("humanizeDuration(%v) = %q, want %q", in, got, want)
		}
	}
}
