package borrowings

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/library/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, record *models.BorrowingRecord) error
	Update(ctx context.Context, record *models.BorrowingRecord) error
	CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error)
	// FindActiveByBook returns the open loan of the book, or
	// common.ErrorNotFound when there is none.
	FindActiveByBook(ctx context.Context, bookID uuid.UUID) (*models.BorrowingRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.BorrowingRecord, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]models.BorrowingRecord, error)
}
