package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

const (
	// OTPSubject is the subject line of the one-time code email.
	OTPSubject = "Your Verification Code"
	// ConfirmationSubject is the subject line of the post-login welcome email.
	ConfirmationSubject = "Welcome to Dashboard App"
)

var otpHTML = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html><body style="font-family:sans-serif">
<h1>Verify your email address</h1>
<p>Your verification code is below. Enter it in your open browser window and we'll help you get signed in.</p>
<p style="font-size:30px;letter-spacing:6px">{{.Code}}</p>
<p>If you didn't request this email, there's nothing to worry about, you can safely ignore it.</p>
<p style="color:#898989;font-size:12px">This code will expire in {{.Expiry}}.</p>
</body></html>`))

var confirmationHTML = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html><body style="font-family:sans-serif">
<h1>Welcome to Dashboard App!</h1>
<p>Hi there! Your email address {{.Email}} has been successfully verified.</p>
<p>You now have access to your dashboard where you can view product analytics and browse the product catalog.</p>
{{if .DashboardURL}}<p><a href="{{.DashboardURL}}">Go to Dashboard</a></p>{{end}}
<p style="color:#898989;font-size:12px">Thank you for choosing Dashboard App!</p>
</body></html>`))

// OTPMessage composes the email carrying a one-time code.
func OTPMessage(to, code string, ttl time.Duration) (Message, error) {
	expiry := humanizeDuration(ttl)

	var html bytes.Buffer
	if err := otpHTML.Execute(&html, struct{ Code, Expiry string }{code, expiry}); err != nil {
		return Message{}, fmt.Errorf("mail: render otp message: %w", err)
	}

	body := fmt.Sprintf("Your verification code is %s.\n\nThis code will expire in %s.\n", code, expiry)
	return Message{
		To:      []string{to},
		Subject: OTPSubject,
		Body:    body,
		HTML:    html.String(),
	}, nil
}

// ConfirmationMessage composes the welcome email sent after a successful login.
func ConfirmationMessage(to, dashboardURL string) (Message, error) {
	var html bytes.Buffer
	data := struct{ Email, DashboardURL string }{to, strings.TrimSpace(dashboardURL)}
	if err := confirmationHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("mail: render confirmation message: %w", err)
	}

	body := fmt.Sprintf("Hi there! Your email address %s has been successfully verified.\n", to)
	if data.DashboardURL != "" {
		body += fmt.Sprintf("\nGo to your dashboard: %s\n", data.DashboardURL)
	}
	return Message{
		To:      []string{to},
		Subject: ConfirmationSubject,
		Body:    body,
		HTML:    html.String(),
	}, nil
}

func humanizeDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	switch {
	case minutes <= 1:
		return "1 minute"
	case minutes%60 == 0 && minutes >= 120:
		return fmt.Sprintf("%d hours", minutes/60)
	case minutes == 60:
		return "1 hour"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}
