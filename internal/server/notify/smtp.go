package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/wneessen/go-mail"
	"golang.org/x/time/rate"
)

const otpSubject = "Your verification code"

var otpTemplate = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h2 style="color: #4a90e2;">Your One-Time Password (OTP)</h2>
  <p>Your OTP for verification is: <strong>{{.Code}}</strong></p>
  <p>This OTP will expire in {{.Minutes}} minutes.</p>
  <p>If you didn't request this OTP, please ignore this email.</p>
  <hr style="border: none; border-top: 1px solid #e0e0e0; margin: 20px 0;">
  <p style="color: #666; font-size: 12px;">This is an automated message, please do not reply to this email.</p>
</div>`))

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	RateLimit float64 // messages per second, 0 means unlimited
}

// SMTPNotifier sends OTP emails over SMTP. Sends are throttled so a burst
// of registrations does not trip the provider's limits.
type SMTPNotifier struct {
	client  *mail.Client
	from    string
	limiter *rate.Limiter
}

// sendMessage is a seam over the network round trip.
var sendMessage = func(ctx context.Context, c *mail.Client, m *mail.Msg) error {
	return c.DialAndSendWithContext(ctx, m)
}

func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &SMTPNotifier{
		client:  c,
		from:    cfg.From,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

func (n *SMTPNotifier) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	m, err := n.buildMessage(to, code, ttl)
	if err != nil {
		return err
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	return sendMessage(ctx, n.client, m)
}

func (n *SMTPNotifier) buildMessage(to, code string, ttl time.Duration) (*mail.Msg, error) {
	var body bytes.Buffer
	if err := otpTemplate.Execute(&body, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: int(ttl.Minutes())}); err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err := m.From(n.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	m.Subject(otpSubject)
	m.SetBodyString(mail.TypeTextHTML, body.String())
	m.AddAlternativeString(mail.TypeTextPlain, fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(ttl.Minutes())))
	return m, nil
}
