// Package notification delivers transactional email and SMS.  Sends
// are fire-and-forget from the workflow's point of view: callers log
// failures and move on, they never roll back committed state because a
// message could not go out.
package notification

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// EmailSender sends a single HTML email.
type EmailSender interface {
	SendEmail(to, subject, htmlBody string) error
}

// SmsSender sends a single text message.
type SmsSender interface {
	SendSms(to, body string) error
}

// SMTPConfig carries the mail transport settings.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Mailer sends email over SMTP via gomail.  When no host is configured
// (local development) sends are skipped and logged instead of failing.
type Mailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
	log    zerolog.Logger
}

// NewMailer constructs a Mailer from the given transport settings.
func NewMailer(cfg SMTPConfig, log zerolog.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		log:    log,
	}
}

// SendEmail delivers one HTML message.
func (m *Mailer) SendEmail(to, subject, htmlBody string) error {
	if m.cfg.Host == "" {
		m.log.Info().Str("to", to).Str("subject", subject).Msg("email send skipped (no SMTP configured)")
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("failed to send email")
		return err
	}
	m.log.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// LogSms is the SMS transport used until a real gateway is wired up.
// It masks the destination number and records the send.
type LogSms struct {
	Log zerolog.Logger
}

// SendSms logs the outbound message without delivering it.
func (s *LogSms) SendSms(to, body string) error {
	masked := to
	if len(masked) > 4 {
		masked = masked[:4] + "****"
	}
	s.Log.Info().Str("phone", masked).Msg("sms send skipped (gateway not configured)")
	return nil
}

// WarrantyDetails feeds the warranty confirmation template.
type WarrantyDetails struct {
	ModelName string
	StartDate string
	EndDate   string
}

// OtpEmail renders the verification-code message.
func OtpEmail(code string) (subject, html string) {
	subject = "Your KomfyAz Verification Code"
	html = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>KomfyAz - Verification Code</h2>
  <p>Your verification code is:</p>
  <div style="background: #f5f5f5; padding: 20px; text-align: center; font-size: 32px; letter-spacing: 8px; font-weight: bold; border-radius: 8px;">%s</div>
  <p style="color: #666; margin-top: 16px;">This code expires in 5 minutes. Do not share it with anyone.</p>
</div>`, code)
	return subject, html
}

// OtpSms renders the verification-code text message.
func OtpSms(code string) string {
	return fmt.Sprintf("Your KomfyAz verification code is %s. It expires in 5 minutes.", code)
}

// WarrantyConfirmationEmail renders the warranty-activated message.
func WarrantyConfirmationEmail(d WarrantyDetails, dashboardURL string) (subject, html string) {
	subject = "Warranty Activated - KomfyAz"
	html = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>KomfyAz - Warranty Activated</h2>
  <p>Your warranty has been successfully activated.</p>
  <table style="width: 100%%; border-collapse: collapse; margin: 16px 0;">
    <tr><td style="padding: 8px; font-weight: bold;">Product</td><td style="padding: 8px;">%s</td></tr>
    <tr><td style="padding: 8px; font-weight: bold;">Start Date</td><td style="padding: 8px;">%s</td></tr>
    <tr><td style="padding: 8px; font-weight: bold;">End Date</td><td style="padding: 8px;">%s</td></tr>
  </table>
  <p>You can view your warranty details in your <a href="%s/dashboard">customer dashboard</a>.</p>
</div>`, d.ModelName, d.StartDate, d.EndDate, dashboardURL)
	return subject, html
}

// PasswordResetEmail renders the reset-link message.
func PasswordResetEmail(resetToken, frontendURL string) (subject, html string) {
	subject = "Password Reset - KomfyAz"
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", frontendURL, resetToken)
	html = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>KomfyAz - Password Reset</h2>
  <p>You requested a password reset. Click the button below to set a new password:</p>
  <div style="text-align: center; margin: 24px 0;">
    <a href="%s" style="background: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Reset Password</a>
  </div>
  <p style="color: #666;">This link expires in 1 hour. If you didn't request this, you can safely ignore this email.</p>
</div>`, resetURL)
	return subject, html
}
