package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPSender sends OTP emails over SMTP.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender builds an SMTP sender. Authentication is enabled when a
// username is configured; TLS is used when the server offers it.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

// SendOTP implements Sender.
func (s *SMTPSender) SendOTP(ctx context.Context, to, code string, expiresAt time.Time) error {
	msg, err := buildOTPMessage(s.from, to, code, expiresAt)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}

func buildOTPMessage(from, to, code string, expiresAt time.Time) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("otp email from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("otp email to: %w", err)
	}
	msg.Subject(otpSubject())
	msg.SetBodyString(mail.TypeTextPlain, otpBody(code, expiresAt))
	return msg, nil
}
