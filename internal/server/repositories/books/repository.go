package books

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/library/internal/server/lending"
	"github.com/dmitrijs2005/library/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, book *models.Book) error
	Get(ctx context.Context, id uuid.UUID) (*models.Book, error)
	// GetForUpdate is Get with a row lock held until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Search(ctx context.Context, filter lending.BookFilter) ([]models.Book, error)
}
