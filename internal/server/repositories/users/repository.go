// Package users is the durable user directory.
package users

import (
	"context"

	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
)

// Repository persists verified accounts. Email is unique; Create and
// UpdateProfile report a clash as common.ErrAlreadyExists. Lookups of
// missing rows return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
