// Package mailer delivers invitation emails to newly invited employees.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Mailer sends an invitation carrying the activation token.
type Mailer interface {
	SendInvitation(ctx context.Context, toEmail, name, activationToken string) error
}

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	From              string
	ActivationURLBase string
}

// SMTPMailer sends invitation mail over SMTP.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

// NewSMTPMailer creates a new SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// SendInvitation delivers the activation link to the invited employee.
func (m *SMTPMailer) SendInvitation(ctx context.Context, toEmail, name, activationToken string) error {
	activationURL := fmt.Sprintf("%s?token=%s", m.cfg.ActivationURLBase, activationToken)

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject("You're invited to join the time tracker")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hi %s,\n\nYou have been invited to join the time tracker.\n"+
			"Please activate your account and set your password here:\n%s\n",
		name, activationURL,
	))
	msg.AddAlternativeString(mail.TypeTextHTML, fmt.Sprintf(
		"<html><body><h2>Welcome!</h2>"+
			"<p>Hi %s, you have been invited to join the time tracker.</p>"+
			"<p><a href=%q>Activate your account</a> and set your password.</p>"+
			"<p>If the link does not work, copy this URL into your browser:</p><p>%s</p>"+
			"</body></html>",
		name, activationURL, activationURL,
	))

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send invitation mail: %w", err)
	}

	m.logger.Info("invitation mail sent", zap.String("to", toEmail))
	return nil
}

// LogMailer logs invitations instead of sending them. Used in tests and in
// deployments without SMTP settings.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a new LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendInvitation logs the activation token instead of mailing it.
func (m *LogMailer) SendInvitation(_ context.Context, toEmail, name, activationToken string) error {
	m.logger.Info("invitation (mail disabled)",
		zap.String("to", toEmail),
		zap.String("name", name),
		zap.String("token", activationToken),
	)
	return nil
}
