package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/dmitrijs2005/imagekeeper/internal/dbx"
	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
)

const imageColumns = `id, user_id, original_name, url, public_id, format, size_bytes, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanImage(row interface{ Scan(dest ...any) error }) (*models.Image, error) {
	img := &models.Image{}
	err := row.Scan(&img.ID, &img.OwnerUserID, &img.OriginalName, &img.RemoteURL,
		&img.RemoteObjectID, &img.Format, &img.SizeBytes, &img.CreatedAt)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (r *PostgresRepository) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	query :=
		`INSERT INTO images (user_id, original_name, url, public_id, format, size_bytes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		img.OwnerUserID, img.OriginalName, img.RemoteURL, img.RemoteObjectID, img.Format, img.SizeBytes,
	).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1 AND user_id = $2`

	img, err := scanImage(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) (*models.Image, error) {
	query := `DELETE FROM images WHERE id = $1 AND user_id = $2 RETURNING ` + imageColumns

	img, err := scanImage(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}
