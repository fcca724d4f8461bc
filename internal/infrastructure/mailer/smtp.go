package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Config holds SMTP settings for outgoing account emails.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTP delivers account emails through an SMTP server.
type SMTP struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// New creates an SMTP mailer.
func New(cfg Config) *SMTP {
	return &SMTP{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

// SendVerificationCode emails the signup verification code.
func (m *SMTP) SendVerificationCode(email, code string) error {
	body := fmt.Sprintf("Your verification code is: %s", code)
	return m.send(email, "Account Verification", body)
}

// SendPasswordResetCode emails the password reset code.
func (m *SMTP) SendPasswordResetCode(email, code string) error {
	body := fmt.Sprintf(`<h2>Password Reset Request</h2>
<p>Your 6-digit verification code is: <strong style="font-size: 24px;">%s</strong></p>
<p>This code will expire in 15 minutes.</p>
<p>If you didn't request this, please ignore this email.</p>`, code)
	return m.send(email, "Password Reset - Verification Code", body)
}

func (m *SMTP) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}
