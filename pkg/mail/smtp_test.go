package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

type recordingClient struct {
	from  string
	rcpts []string
	data  bytes.Buffer
	quit  bool
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (c *recordingClient) Mail(from string) error { c.from = from; return nil }
func (c *recordingClient) Rcpt(to string) error { c.rcpts = append(c.rcpts, to); return nil }
func (c *recordingClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&c.data}, nil
}
func (c *recordingClient) Quit() error { c.quit = true; return nil }
func (c *recordingClient) Close() error { return nil }
func (c *recordingClient) StartTLS(*tls.Config) error { return nil }
func (c *recordingClient) Auth(smtp.Auth) error { return nil }
func (c *recordingClient) Extension(string) (bool, string) { return false, "" }

func newRecordingMailer(t *testing.T, cfg SMTPSettings) (*smtpMailer, *recordingClient) {
	t.Helper()

	mailer, err := NewSMTPMailer(cfg)
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}
	sm := mailer.(*smtpMailer)

	client := &recordingClient{}
	sm.dialFn = func(context.Context, SMTPSettings) (net.Conn, smtpClient, error) {
		left, right := net.Pipe()
		t.Cleanup(func() { _ = right.Close() })
		return left, client, nil
	}
	return sm, client
}

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	if err == nil || !strings.Contains(err.Error(), "host is required") {
		t.Fatalf("expected host validation error, got %v", err)
	}

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com"})
	if err == nil || !strings.Contains(err.Error(), "port is required") {
		t.Fatalf("expected port validation error, got %v", err)
	}

	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	if err != nil {
		t.Fatalf("expected disabled configuration to succeed: %v", err)
	}
	if mailer == nil {
		t.Fatal("expected mailer to be returned")
	}
}

func TestSMTPMailerSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	err = mailer.Send(context.Background(), Message{
		To:      []string{"test@example.com"},
		Subject: "Test",
		Body:    "Hello",
	})
	if !errors.Is(err, ErrDeliveryDisabled) {
		t.Fatalf("expected ErrDeliveryDisabled, got %v", err)
	}
}

func TestSMTPMailerDefaultTimeout(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		UseTLS:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error creating mailer: %v", err)
	}

	sm := mailer.(*smtpMailer)
	if sm.cfg.Timeout != 10*time.Second {
		t.Fatalf("expected timeout to be 10s, got %v", sm.cfg.Timeout)
	}
}

func TestSMTPMailerSendRequiresRecipients(t *testing.T) {
	sm, _ := newRecordingMailer(t, SMTPSettings{Enabled: true, Host: "smtp.example.com", Port: 587})

	err := sm.Send(context.Background(), Message{To: []string{"   ", "\t"}, Subject: "None"})
	if err == nil || !strings.Contains(err.Error(), "at least one recipient") {
		t.Fatalf("expected missing recipient error, got %v", err)
	}
}

func TestSMTPMailerSendValidatesAddresses(t *testing.T) {
	sm, _ := newRecordingMailer(t, SMTPSettings{Enabled: true, Host: "smtp.example.com", Port: 587})

	err := sm.Send(context.Background(), Message{From: "invalid-from", To: []string{"user@example.com"}})
	if err == nil || !strings.Contains(err.Error(), "invalid from address") {
		t.Fatalf("expected invalid from error, got %v", err)
	}

	err = sm.Send(context.Background(), Message{To: []string{"user@example.com", "bad-address"}})
	if err == nil || !strings.Contains(err.Error(), "invalid recipient address") {
		t.Fatalf("expected invalid recipient error, got %v", err)
	}
}

func TestSMTPMailerSendUsesDefaultSender(t *testing.T) {
	sm, client := newRecordingMailer(t, SMTPSettings{Enabled: true, Host: "smtp.example.com", Port: 587})

	err := sm.Send(context.Background(), Message{
		To:      []string{"a@x.com", "a@x.com"},
		Subject: OTPSubject,
		Body:    "123456",
	})
	if err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	if client.from != DefaultSender {
		t.Fatalf("expected default sender, got %q", client.from)
	}
	if len(client.rcpts) != 1 || client.rcpts[0] != "a@x.com" {
		t.Fatalf("unexpected recipients: %v", client.rcpts)
	}
	if !client.quit {
		t.Fatal("expected QUIT to be issued")
	}
	if !strings.Contains(client.data.String(), "Subject: Your Verification Code") {
		t.Fatalf("unexpected data: %q", client.data.String())
	}
}

func TestSMTPMailerSendsDisplayName(t *testing.T) {
	sm, client := newRecordingMailer(t, SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    FormatSender("Dashboard App", "noreply@dashboard.com"),
	})

	if err := sm.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: OTPSubject, Body: "123456"}); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	if client.from != "noreply@dashboard.com" {
		t.Fatalf("expected bare envelope sender, got %q", client.from)
	}
	if !strings.Contains(client.data.String(), `From: "Dashboard App" <noreply@dashboard.com>`) {
		t.Fatalf("expected display name in header: %q", client.data.String())
	}
}

func TestFormatSender(t *testing.T) {
	cases := map[string][2]string{
		`"Dashboard App" <noreply@dashboard.com>`: {"Dashboard App", "noreply@dashboard.com"},
		"noreply@dashboard.com":                   {"  ", " noreply@dashboard.com "},
		"":                                        {"Dashboard App", ""},
	}
	for want, in := range cases {
		if got := FormatSender(in[0], in[1]); got != want {
			t.Fatalf("FormatSender(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}

func TestFormatMessagePlain(t *testing.T) {
	content := formatMessage("from@example.com", []string{"to@example.com"}, Message{Subject: "Subject\r\nBreak", Body: "Body"})
	if !strings.Contains(content, "From: from@example.com") {
		t.Fatalf("expected from header, got %q", content)
	}
	if !strings.Contains(content, "Subject: Subject  Break") {
		t.Fatalf("expected sanitised subject, got %q", content)
	}
	if !strings.Contains(content, "Content-Type: text/plain") {
		t.Fatalf("expected plain content type, got %q", content)
	}
	if !strings.HasSuffix(content, "Body") {
		t.Fatalf("expected body suffix, got %q", content)
	}
}

func TestFormatMessageAlternative(t *testing.T) {
	content := formatMessage("from@example.com", []string{"to@example.com"}, Message{
		Subject: "Hi",
		Body:    "plain part",
		HTML:    "<p>html part</p>",
	})
	if !strings.Contains(content, "multipart/alternative") {
		t.Fatalf("expected multipart content type, got %q", content)
	}
	if !strings.Contains(content, "plain part") || !strings.Contains(content, "<p>html part</p>") {
		t.Fatalf("expected both parts, got %q", content)
	}
	if !strings.Contains(content, "--"+mimeBoundary+"--") {
		t.Fatalf("expected closing boundary, got %q", content)
	}
}

func TestUniqueAddresses(t *testing.T) {
	addresses := []string{"alice@example.com", "bob@example.com", " alice@example.com ", "", "bob@example.com"}
	result := uniqueAddresses(addresses)
	if len(result) != 2 {
		t.Fatalf("expected 2 unique addresses, got %d: %v", len(result), result)
	}
	if result[0] != "alice@example.com" || result[1] != "bob@example.com" {
		t.Fatalf("unexpected result order/content: %v", result)
	}
}

func TestDisabledMailer(t *testing.T) {
	if err := Disabled().Send(context.Background(), Message{}); !errors.Is(err, ErrDeliveryDisabled) {
		t.Fatalf("expected ErrDeliveryDisabled, got %v", err)
	}
}
