package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/server/repositories/books"
	"github.com/dmitrijs2005/library/internal/server/repositories/borrowings"
	"github.com/dmitrijs2005/library/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Books(db dbx.DBTX) books.Repository
	Users(db dbx.DBTX) users.Repository
	Borrowings(db dbx.DBTX) borrowings.Repository
}
