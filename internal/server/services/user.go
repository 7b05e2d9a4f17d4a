package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/logging"
	"github.com/dmitrijs2005/library/internal/server/lending"
	"github.com/dmitrijs2005/library/internal/server/models"
	"github.com/dmitrijs2005/library/internal/server/repositories/repomanager"
)

// UserService manages library members and exposes their loan history.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "users"),
	}
}

// RegisterUser creates a user with a fresh ID. An empty role means member.
func (s *UserService) RegisterUser(ctx context.Context, name, email string, role models.UserRole) (*models.User, error) {
	user := models.NewUser(name, email, role)
	if err := s.repomanager.Users(s.db).Create(ctx, &user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	s.logger.Info(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return &user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, lending.NotFound("User with ID %s not found", id)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// UpdateUser replaces the profile of the user with id. The ID in profile is
// ignored.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, profile models.User) (*models.User, error) {
	var updated models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		current, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		updated = current.WithProfile(profile)
		return repo.Update(ctx, &updated)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, lending.NotFound("User with ID %s not found", id)
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return &updated, nil
}

// UserBorrowings lists every loan of the user, newest first.
func (s *UserService) UserBorrowings(ctx context.Context, id uuid.UUID) ([]models.BorrowingRecord, error) {
	exists, err := s.repomanager.Users(s.db).Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if !exists {
		return nil, lending.NotFound("User with ID %s not found", id)
	}

	records, err := s.repomanager.Borrowings(s.db).ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error listing borrowings: %w", err)
	}
	return records, nil
}
