package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/openpress/blogcms/config"
	"github.com/openpress/blogcms/pkg/circuit"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Purpose selects the subject line and wording of the OTP mail.
type Purpose string

const (
	PurposeForgetPassword Purpose = "forget-password"
	PurposeChangePassword Purpose = "change-password"
)

// Mailer delivers one-time codes out of band. The plaintext code is only
// ever present in the mail body, never in an API response.
type Mailer interface {
	SendOtp(ctx context.Context, to string, otp string, purpose Purpose) error
}

const otpBodyTemplate = `
<div style="font-family: Arial, sans-serif; padding: 25px; background: #f9f9f9;">
  <div style="max-width: 500px; margin: auto; background: #ffffff; padding: 20px; border-radius: 10px;">
    <h2 style="color: #333; text-align: center;">Your OTP Code</h2>
    <p style="font-size: 16px; color: #555;">Use the following one-time code to complete your {{ .Action | lower }}:</p>
    <div style="font-size: 24px; font-weight: bold; color: #007bff; text-align: center; margin: 20px 0;">{{ .Otp }}</div>
    <p style="font-size: 14px; color: #777; text-align: center;">This code will expire in <b>{{ .ExpiresIn }}</b>.</p>
  </div>
</div>`

type templateData struct {
	Action    string
	Otp       string
	ExpiresIn string
}

// SMTPMailer sends mail through an SMTP relay via gomail. Dispatch is
// guarded by a circuit breaker so a dead relay fails fast.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	dialer  *gomail.Dialer
	breaker *circuit.Breaker
	tmpl    *template.Template
	logger  *zap.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, breaker *circuit.Breaker, logger *zap.Logger) (*SMTPMailer, error) {
	tmpl, err := template.New("otp").Funcs(sprig.FuncMap()).Parse(otpBodyTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse otp mail template: %w", err)
	}

	return &SMTPMailer{
		cfg:     cfg,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		breaker: breaker,
		tmpl:    tmpl,
		logger:  logger,
	}, nil
}

func (m *SMTPMailer) SendOtp(ctx context.Context, to string, otp string, purpose Purpose) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var subject, action string
	switch purpose {
	case PurposeChangePassword:
		subject = "Change Password OTP Code"
		action = "Change Password"
	default:
		subject = "Forget Password OTP Code"
		action = "Forget Password"
	}

	var body bytes.Buffer
	if err := m.tmpl.Execute(&body, templateData{
		Action:    action,
		Otp:       otp,
		ExpiresIn: "2 minutes",
	}); err != nil {
		return fmt.Errorf("failed to render otp mail: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	err := m.breaker.Execute(func() error {
		return m.dialer.DialAndSend(msg)
	})
	if err != nil {
		m.logger.Error("Email sending failed",
			zap.String("to", to),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
		return err
	}

	m.logger.Info("Email sent",
		zap.String("to", to),
		zap.String("purpose", string(purpose)),
	)

	return nil
}
