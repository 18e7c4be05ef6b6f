// Package images stores image metadata. Every query is scoped by owner.
package images

import (
	"context"

	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, img *models.Image) (*models.Image, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Image, error)
	GetByID(ctx context.Context, id, ownerID string) (*models.Image, error)
	// Delete removes the image and returns the deleted row so the caller
	// can clean up the remote object.
	Delete(ctx context.Context, id, ownerID string) (*models.Image, error)
}
