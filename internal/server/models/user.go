// Package models holds the server's domain records.
package models

import "time"

// User is a durable, verified account.
type User struct {
	ID                string
	Username          string
	Email             string
	PasswordHash      string
	IsEmailVerified   bool
	ProfilePictureURL *string
	CreatedAt         time.Time
}

// PublicUser is the projection returned to clients; it never carries the
// password hash.
type PublicUser struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePictureURL,
	}
}

// ProfileUpdate lists the columns to change; nil fields are left as is.
type ProfileUpdate struct {
	Username          *string
	Email             *string
	ProfilePictureURL *string
}

func (p ProfileUpdate) Empty() bool {
	return p.Username == nil && p.Email == nil && p.ProfilePictureURL == nil
}
