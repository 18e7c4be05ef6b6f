package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/dmitrijs2005/imagekeeper/internal/logging"
	"github.com/dmitrijs2005/imagekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
	"github.com/dmitrijs2005/imagekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/imagekeeper/internal/server/storage"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const imageFolder = "images"

type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	media       storage.MediaHost
	logger      logging.Logger
}

func NewImageService(db *sql.DB, m repomanager.RepositoryManager, media storage.MediaHost, logger logging.Logger) *ImageService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ImageService{
		db:          db,
		repomanager: m,
		media:       media,
		logger:      logger.With("module", "images"),
	}
}

// Upload stores the file remotely and records it for ownerID. The spooled
// file is removed on every path; if the row cannot be written the remote
// object is deleted again.
func (s *ImageService) Upload(ctx context.Context, ownerID string, up *Upload) (img *models.Image, err error) {
	defer up.Remove()
	defer func() { countResult(metrics.ImagesUploadedTotal, err) }()

	if up == nil || up.File == nil {
		return nil, common.NewValidationError("image", "no file uploaded")
	}

	format, err := detectFormat(up.Filename, up.File)
	if err != nil {
		return nil, err
	}

	obj, err := s.media.Upload(ctx, imageFolder, up.Filename, up.File, up.File.Size, "image/"+format)
	if err != nil {
		return nil, err
	}

	img, err = s.repomanager.Images(s.db).Create(ctx, &models.Image{
		OwnerUserID:    ownerID,
		OriginalName:   up.Filename,
		RemoteURL:      obj.URL,
		RemoteObjectID: obj.ObjectID,
		Format:         format,
		SizeBytes:      up.File.Size,
	})
	if err != nil {
		if derr := s.media.Delete(ctx, obj.ObjectID); derr != nil {
			s.logger.Warn(ctx, "remove orphaned image", "object_id", obj.ObjectID, "error", derr)
		}
		return nil, fmt.Errorf("%w: save image: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "image uploaded", "image_id", img.ID, "user_id", ownerID)
	return img, nil
}

func (s *ImageService) List(ctx context.Context, ownerID string) ([]*models.Image, error) {
	return s.repomanager.Images(s.db).ListByOwner(ctx, ownerID)
}

func (s *ImageService) Get(ctx context.Context, ownerID, id string) (*models.Image, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Images(s.db).GetByID(ctx, id, ownerID)
}

// Delete removes the caller's image. Removing the remote object is best
// effort once the row is gone.
func (s *ImageService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}

	img, err := s.repomanager.Images(s.db).Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := s.media.Delete(ctx, img.RemoteObjectID); err != nil {
		s.logger.Warn(ctx, "remove remote image", "object_id", img.RemoteObjectID, "error", err)
	}
	return nil
}

func countResult(c *prometheus.CounterVec, err error) {
	if err != nil {
		c.WithLabelValues(metrics.ResultFailure).Inc()
		return
	}
	c.WithLabelValues(metrics.ResultSuccess).Inc()
}
