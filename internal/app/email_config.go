package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/charlesng35/otpdash/pkg/logger"
	"github.com/charlesng35/otpdash/pkg/mail"
)

// Supported values for email.provider.
const (
	EmailProviderSMTP     = "smtp"
	EmailProviderResend   = "resend"
	EmailProviderLog      = "log"
	EmailProviderDisabled = "disabled"
)

// SMTPSettings converts EmailConfig to the mail package representation. SMTP delivery is
// enabled once a host is configured.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  strings.TrimSpace(c.SMTP.Host) != "",
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.Sender(),
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}

// ResendSettings converts EmailConfig to the Resend mailer settings.
func (c EmailConfig) ResendSettings() mail.ResendSettings {
	return mail.ResendSettings{
		APIKey: c.Resend.APIKey,
		From:   c.Sender(),
	}
}

// BuildMailer constructs the Mailer selected by email.provider.
func (c EmailConfig) BuildMailer() (mail.Mailer, error) {
	provider := strings.ToLower(strings.TrimSpace(c.Provider))
	switch provider {
	case "", EmailProviderSMTP:
		return mail.NewSMTPMailer(c.SMTPSettings())
	case EmailProviderResend:
		return mail.NewResendMailer(c.ResendSettings())
	case EmailProviderLog:
		return logMailer(), nil
	case EmailProviderDisabled:
		return mail.Disabled(), nil
	default:
		return nil, fmt.Errorf("email: unsupported provider %q", c.Provider)
	}
}

// Sender is the From header for outgoing mail: email.from, falling back to the default
// address, with email.from_name as the display name.
func (c EmailConfig) Sender() string {
	from := strings.TrimSpace(c.From)
	if from == "" {
		from = mail.DefaultSender
	}
	return mail.FormatSender(c.FromName, from)
}

// logMailer writes messages to the log instead of delivering them. Local development only:
// the body contains the one-time code.
func logMailer() mail.Mailer {
	log := logger.WithModule("mail")
	return mail.MailerFunc(func(_ context.Context, msg mail.Message) error {
		log.Info("email captured",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.String("body", msg.Body),
		)
		return nil
	})
}
