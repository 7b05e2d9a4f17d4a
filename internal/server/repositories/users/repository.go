package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/library/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetForUpdate is Get with a row lock held until the surrounding
	// transaction ends. Borrowing takes it to serialise the limit check.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
