package images

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var imageCols = []string{"id", "user_id", "original_name", "url", "public_id", "format", "size_bytes", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+images\s*\(user_id,\s*original_name,\s*url,\s*public_id,\s*format,\s*size_bytes\).*RETURNING\s+id,\s*created_at$`).
		WithArgs("u-1", "cat.png", "https://cdn/images/k.png", "images/k.png", "png", int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("i-1", created))

	img, err := repo.Create(context.Background(), &models.Image{
		OwnerUserID:    "u-1",
		OriginalName:   "cat.png",
		RemoteURL:      "https://cdn/images/k.png",
		RemoteObjectID: "images/k.png",
		Format:         "png",
		SizeBytes:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, "i-1", img.ID)
	assert.True(t, img.CreatedAt.Equal(created))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwner(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	rows := sqlmock.NewRows(imageCols).
		AddRow("i-2", "u-1", "b.gif", "u2", "o2", "gif", int64(2), now).
		AddRow("i-1", "u-1", "a.png", "u1", "o1", "png", int64(1), now.Add(-time.Minute))
	mock.ExpectQuery(`FROM\s+images\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("u-1").WillReturnRows(rows)

	list, err := repo.ListByOwner(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "i-2", list[0].ID)
	assert.Equal(t, "o1", list[1].RemoteObjectID)
}

func TestListByOwner_EmptyIsNotNil(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+images`).WithArgs("u-1").WillReturnRows(sqlmock.NewRows(imageCols))

	list, err := repo.ListByOwner(context.Background(), "u-1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetByID_ScopedByOwner(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`).
		WithArgs("i-1", "u-2").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "i-1", "u-2")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^DELETE\s+FROM\s+images\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+RETURNING`).
		WithArgs("i-1", "u-1").
		WillReturnRows(sqlmock.NewRows(imageCols).AddRow("i-1", "u-1", "a.png", "u1", "o1", "png", int64(1), time.Now()))

	img, err := repo.Delete(context.Background(), "i-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, "o1", img.RemoteObjectID)

	mock.ExpectQuery(`^DELETE`).WithArgs("i-1", "u-1").WillReturnError(sql.ErrNoRows)
	_, err = repo.Delete(context.Background(), "i-1", "u-1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectQuery(`^DELETE`).WithArgs("i-9", "u-1").WillReturnError(errors.New("conn reset"))
	_, err = repo.Delete(context.Background(), "i-9", "u-1")
	assert.ErrorContains(t, err, "db error")
}
