// Package services contains server-side business logic. Each service loads
// entities through the repository manager, applies the lending rules and
// persists the result, running multi-step changes in one transaction.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/logging"
	"github.com/dmitrijs2005/library/internal/server/lending"
	"github.com/dmitrijs2005/library/internal/server/models"
	"github.com/dmitrijs2005/library/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/library/internal/timex"
)

// BookService manages the catalogue and runs borrow/return.
type BookService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	engine      *lending.Engine
	clock       func() time.Time
	logger      logging.Logger
	recorder    Recorder
}

type BookServiceOption func(*BookService)

// WithClock overrides the source of "today" used for due dates and fees.
func WithClock(clock func() time.Time) BookServiceOption {
	return func(s *BookService) { s.clock = clock }
}

// WithRecorder reports borrow and return outcomes to r.
func WithRecorder(r Recorder) BookServiceOption {
	return func(s *BookService) { s.recorder = r }
}

func NewBookService(db *sql.DB, m repomanager.RepositoryManager, engine *lending.Engine, logger logging.Logger, opts ...BookServiceOption) *BookService {
	s := &BookService{
		db:          db,
		repomanager: m,
		engine:      engine,
		clock:       time.Now,
		logger:      logger.With("module", "books"),
		recorder:    nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookService) today() timex.Date {
	return timex.DateOf(s.clock().UTC())
}

// AddBook stores a new available book.
func (s *BookService) AddBook(ctx context.Context, title, author string) (*models.Book, error) {
	book := models.NewBook(title, author)
	if err := s.repomanager.Books(s.db).Create(ctx, &book); err != nil {
		return nil, fmt.Errorf("error creating book: %w", err)
	}
	return &book, nil
}

func (s *BookService) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, err := s.repomanager.Books(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, lending.NotFound("Book with ID %s not found", id)
		}
		return nil, fmt.Errorf("error loading book: %w", err)
	}
	return book, nil
}

func (s *BookService) ListBooks(ctx context.Context) ([]models.Book, error) {
	books, err := s.repomanager.Books(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing books: %w", err)
	}
	return books, nil
}

// UpdateBook replaces title and author. Lending state is left as stored.
func (s *BookService) UpdateBook(ctx context.Context, id uuid.UUID, title, author string) (*models.Book, error) {
	var updated models.Book

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Books(tx)

		current, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		updated = current.WithDetails(title, author)
		return repo.Update(ctx, &updated)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, lending.NotFound("Book with ID %s not found", id)
		}
		return nil, fmt.Errorf("error updating book: %w", err)
	}

	return &updated, nil
}

func (s *BookService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	if err := s.repomanager.Books(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return lending.NotFound("Book with ID %s not found for deletion", id)
		}
		return fmt.Errorf("error deleting book: %w", err)
	}
	return nil
}

func (s *BookService) SearchBooks(ctx context.Context, filter lending.BookFilter) ([]models.Book, error) {
	books, err := s.repomanager.Books(s.db).Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error searching books (%s): %w", filter.Shape(), err)
	}
	return books, nil
}

// BorrowBook lends the book to the user and returns the updated book. The
// book and user rows stay locked until the loan is stored.
func (s *BookService) BorrowBook(ctx context.Context, bookID, userID uuid.UUID) (result *models.Book, err error) {
	defer func() { s.recorder.LendingOperation(OperationBorrow, err) }()

	today := s.today()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		booksRepo := s.repomanager.Books(tx)
		usersRepo := s.repomanager.Users(tx)
		borrowingsRepo := s.repomanager.Borrowings(tx)

		book, err := optional(booksRepo.GetForUpdate(ctx, bookID))
		if err != nil {
			return err
		}

		user, err := optional(usersRepo.GetForUpdate(ctx, userID))
		if err != nil {
			return err
		}

		activeLoans := 0
		if user != nil {
			if activeLoans, err = borrowingsRepo.CountActiveByUser(ctx, userID); err != nil {
				return err
			}
		}

		lent, record, err := s.engine.Borrow(book, user, activeLoans, today)
		if err != nil {
			if errors.Is(err, lending.ErrNotFound) {
				if book == nil {
					return lending.NotFound("Book with ID %s not found", bookID)
				}
				return lending.NotFound("User with ID %s not found for borrowing.", userID)
			}
			return err
		}

		if err := booksRepo.Update(ctx, &lent); err != nil {
			return err
		}
		if err := borrowingsRepo.Create(ctx, &record); err != nil {
			return err
		}

		result = &lent
		return nil
	})
	if err != nil {
		if _, ok := lending.KindOf(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("error borrowing book: %w", err)
	}

	s.logger.Info(ctx, "book borrowed", "book_id", bookID, "user_id", userID, "due_date", result.DueDate)
	return result, nil
}

// ReturnBook closes the active loan of the book, charging a late fee when
// overdue, and returns the updated book.
func (s *BookService) ReturnBook(ctx context.Context, bookID uuid.UUID) (result *models.Book, err error) {
	defer func() { s.recorder.LendingOperation(OperationReturn, err) }()

	today := s.today()
	var closed models.BorrowingRecord

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		booksRepo := s.repomanager.Books(tx)
		borrowingsRepo := s.repomanager.Borrowings(tx)

		book, err := optional(booksRepo.GetForUpdate(ctx, bookID))
		if err != nil {
			return err
		}
		if book == nil {
			return lending.NotFound("Book with ID %s not found", bookID)
		}

		active, err := optional(borrowingsRepo.FindActiveByBook(ctx, bookID))
		if err != nil {
			return err
		}

		released, rec, err := s.engine.Return(book, active, today)
		if err != nil {
			return err
		}

		if err := booksRepo.Update(ctx, &released); err != nil {
			return err
		}
		if err := borrowingsRepo.Update(ctx, &rec); err != nil {
			return err
		}

		result, closed = &released, rec
		return nil
	})
	if err != nil {
		if _, ok := lending.KindOf(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("error returning book: %w", err)
	}

	s.logger.Info(ctx, "book returned", "book_id", bookID, "user_id", closed.UserID, "late_fee", closed.LateFee)
	return result, nil
}

// BookHistory lists every loan of the book, newest first.
func (s *BookService) BookHistory(ctx context.Context, bookID uuid.UUID) ([]models.BorrowingRecord, error) {
	exists, err := s.repomanager.Books(s.db).Exists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("error loading book: %w", err)
	}
	if !exists {
		return nil, lending.NotFound("Book with ID %s not found", bookID)
	}

	records, err := s.repomanager.Borrowings(s.db).ListByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("error listing borrowings: %w", err)
	}
	return records, nil
}

// optional turns a not-found lookup into a nil entity.
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return v, err
}
