// Package pending keeps registrations that are waiting for email
// verification. Records are keyed by email, expire, and are consumed at
// most once.
package pending

import (
	"context"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
)

// Store is the pending-registration store. All operations are atomic per
// email.
type Store interface {
	// Put inserts or replaces the record for rec.Email. A replaced record's
	// OTP stops working.
	Put(ctx context.Context, rec *models.PendingRegistration) error

	// Get returns the record for email or common.ErrNoPendingRequest.
	Get(ctx context.Context, email string) (*models.PendingRegistration, error)

	Delete(ctx context.Context, email string) error

	// Consume checks otp against the record for email and removes it on a
	// match. It fails with common.ErrNoPendingRequest when there is no
	// record, common.ErrOTPExpired (record removed) when now is past its
	// expiry, and common.ErrInvalidOTP (record kept) on a mismatch.
	Consume(ctx context.Context, email, otp string, now time.Time) (*models.PendingRegistration, error)

	// Reissue replaces the OTP and expiry of an existing record and
	// returns the updated copy, or common.ErrNoPendingRequest.
	Reissue(ctx context.Context, email, otp string, expiresAt time.Time) (*models.PendingRegistration, error)

	// Restore puts rec back only if no record exists for its email.
	Restore(ctx context.Context, rec *models.PendingRegistration) error

	// Sweep removes records whose expiry is before now and reports how
	// many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

func clone(rec *models.PendingRegistration) *models.PendingRegistration {
	c := *rec
	return &c
}
