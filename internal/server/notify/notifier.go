// Package notify delivers one-time codes to users.
package notify

import (
	"context"
	"time"
)

// Notifier sends an OTP to an email address. ttl is how long the code stays
// valid and is shown to the recipient.
type Notifier interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
}
