package models

import "time"

// Image is an uploaded picture owned by exactly one user.
type Image struct {
	ID             string    `json:"id"`
	OwnerUserID    string    `json:"-"`
	OriginalName   string    `json:"original_name"`
	RemoteURL      string    `json:"url"`
	RemoteObjectID string    `json:"public_id"`
	Format         string    `json:"format"`
	SizeBytes      int64     `json:"size_bytes"`
	CreatedAt      time.Time `json:"created_at"`
}
