package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resendlabs/resend-go"
)

// ResendSettings configure delivery through the Resend HTTP API.
type ResendSettings struct {
	APIKey string
	From   string
}

type resendSendFunc func(req *resend.SendEmailRequest) error

type resendMailer struct {
	cfg    ResendSettings
	sendFn resendSendFunc
}

// NewResendMailer builds a Mailer backed by the Resend API client.
func NewResendMailer(cfg ResendSettings) (Mailer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("resend: api key is required")
	}

	client := resend.NewClient(cfg.APIKey)
	return &resendMailer{
		cfg: cfg,
		sendFn: func(req *resend.SendEmailRequest) error {
			_, err := client.Emails.Send(req)
			return err
		},
	}, nil
}

func (m *resendMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recipients := uniqueAddresses(msg.To)
	if len(recipients) == 0 {
		return errors.New("resend: at least one recipient is required")
	}

	req := &resend.SendEmailRequest{
		From:    senderFor(msg, m.cfg.From),
		To:      recipients,
		Subject: escapeHeader(msg.Subject),
		Text:    msg.Body,
		Html:    msg.HTML,
	}

	if err := m.sendFn(req); err != nil {
		return fmt.Errorf("resend: send email: %w", err)
	}
	return nil
}
