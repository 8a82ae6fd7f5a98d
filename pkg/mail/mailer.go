package mail

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

// DefaultSender is used when neither the message nor the transport names a sender.
const DefaultSender = "noreply@dashboard.com"

// ErrDeliveryDisabled signals that outbound mail is switched off via configuration.
var ErrDeliveryDisabled = errors.New("mail: delivery disabled")

// Message represents an outbound email. HTML is optional; when set it becomes the
// rendered part and Body is kept as the plain-text alternative.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
	HTML    string
}

// Mailer defines behaviour for sending email messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, msg Message) error

func (f MailerFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Disabled returns a mailer that rejects every message with ErrDeliveryDisabled.
func Disabled() Mailer {
	return MailerFunc(func(context.Context, Message) error {
		return ErrDeliveryDisabled
	})
}

// FormatSender renders a From header value, adding the display name when one is given.
func FormatSender(name, address string) string {
	address = strings.TrimSpace(address)
	if name = strings.TrimSpace(name); name == "" || address == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}

func uniqueAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	var result []string
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, exists := seen[addr]; exists {
			continue
		}
		seen[addr] = struct{}{}
		result = append(result, addr)
	}
	return result
}

func senderFor(msg Message, fallback string) string {
	if from := strings.TrimSpace(msg.From); from != "" {
		return from
	}
	if fallback = strings.TrimSpace(fallback); fallback != "" {
		return fallback
	}
	return DefaultSender
}
