package models

import "time"

// PendingUser is the account payload held until the email is verified.
type PendingUser struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// PendingRegistration is keyed by Email; at most one exists per address.
type PendingRegistration struct {
	Email     string      `json:"email"`
	OTP       string      `json:"otp"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      PendingUser `json:"pendingUser"`
}

// Expired reports whether the record is past its expiry at now.
// The record is still valid at exactly ExpiresAt.
func (p *PendingRegistration) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
