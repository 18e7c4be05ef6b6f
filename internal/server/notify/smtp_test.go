package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func stubSend(t *testing.T, fn func(ctx context.Context, c *mail.Client, m *mail.Msg) error) {
	t.Helper()
	orig := sendMessage
	sendMessage = fn
	t.Cleanup(func() { sendMessage = orig })
}

func TestSMTPNotifier_SendOTP(t *testing.T) {
	var sent *mail.Msg
	stubSend(t, func(ctx context.Context, c *mail.Client, m *mail.Msg) error {
		sent = m
		return nil
	})

	n, err := NewSMTPNotifier(SMTPConfig{
		Host: "smtp.example.com", Port: 2525, Username: "u", Password: "p",
		From: "no-reply@example.com", RateLimit: 5,
	})
	require.NoError(t, err)

	require.NoError(t, n.SendOTP(context.Background(), "ana@x.com", "0427", 10*time.Minute))
	require.NotNil(t, sent)

	var buf bytes.Buffer
	_, err = sent.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "ana@x.com")
	assert.Contains(t, raw, "no-reply@example.com")
	assert.Contains(t, raw, "0427")
	assert.Contains(t, raw, "10 minutes")
}

func TestSMTPNotifier_SendError(t *testing.T) {
	stubSend(t, func(ctx context.Context, c *mail.Client, m *mail.Msg) error {
		return errors.New("dial tcp: connection refused")
	})

	n, err := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", Port: 25, From: "a@b.c"})
	require.NoError(t, err)

	assert.Error(t, n.SendOTP(context.Background(), "ana@x.com", "1234", time.Minute))
}

func TestSMTPNotifier_BadRecipient(t *testing.T) {
	stubSend(t, func(ctx context.Context, c *mail.Client, m *mail.Msg) error {
		t.Fatal("must not send")
		return nil
	})

	n, err := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", Port: 25, From: "a@b.c"})
	require.NoError(t, err)

	assert.Error(t, n.SendOTP(context.Background(), "not an address", "1234", time.Minute))
}

func TestSMTPNotifier_RateLimitHonoursContext(t *testing.T) {
	stubSend(t, func(ctx context.Context, c *mail.Client, m *mail.Msg) error { return nil })

	n, err := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", Port: 25, From: "a@b.c", RateLimit: 0.001})
	require.NoError(t, err)

	require.NoError(t, n.SendOTP(context.Background(), "ana@x.com", "1", time.Minute), "burst of one passes")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, n.SendOTP(ctx, "ana@x.com", "2", time.Minute))
}
