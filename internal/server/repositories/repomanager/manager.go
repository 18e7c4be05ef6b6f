package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/imagekeeper/internal/dbx"
	"github.com/dmitrijs2005/imagekeeper/internal/server/repositories/images"
	"github.com/dmitrijs2005/imagekeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Images(db dbx.DBTX) images.Repository
}
