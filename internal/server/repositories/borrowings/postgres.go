// Package borrowings provides PostgreSQL-backed storage for borrowing
// records, both open loans and the returned history.
package borrowings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/server/models"
)

const recordColumns = `id, book_id, user_id, borrow_date, due_date, return_date, late_fee`

// PostgresRepository implements borrowing record storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.BorrowingRecord) error {
	query :=
		`INSERT INTO borrowing_records (id, book_id, user_id, borrow_date, due_date, return_date, late_fee)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.BookID, rec.UserID, rec.BorrowDate, rec.DueDate, rec.ReturnDate, rec.LateFee)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update stores the return date and late fee of rec. The loan's parties and
// dates are immutable once created.
func (r *PostgresRepository) Update(ctx context.Context, rec *models.BorrowingRecord) error {
	query :=
		`UPDATE borrowing_records SET return_date = $2, late_fee = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, rec.ID, rec.ReturnDate, rec.LateFee)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query :=
		`SELECT count(*) FROM borrowing_records
		 WHERE user_id = $1 AND return_date IS NULL
		 `

	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) FindActiveByBook(ctx context.Context, bookID uuid.UUID) (*models.BorrowingRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM borrowing_records
		 WHERE book_id = $1 AND return_date IS NULL
		 `

	rec := &models.BorrowingRecord{}
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(
		&rec.ID, &rec.BookID, &rec.UserID, &rec.BorrowDate, &rec.DueDate, &rec.ReturnDate, &rec.LateFee,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// ListByUser returns every loan of the user, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.BorrowingRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM borrowing_records
		 WHERE user_id = $1
		 ORDER BY borrow_date DESC, id
		 `
	return r.selectRecords(ctx, query, userID)
}

// ListByBook returns every loan of the book, newest first.
func (r *PostgresRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]models.BorrowingRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM borrowing_records
		 WHERE book_id = $1
		 ORDER BY borrow_date DESC, id
		 `
	return r.selectRecords(ctx, query, bookID)
}

func (r *PostgresRepository) selectRecords(ctx context.Context, query string, args ...any) ([]models.BorrowingRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select borrowing records: %w", err)
	}
	defer rows.Close()

	result := []models.BorrowingRecord{}
	if err := sqlx.StructScan(rows, &result); err != nil {
		return nil, fmt.Errorf("scan borrowing records: %w", err)
	}
	return result, nil
}
