// Package books provides the PostgreSQL-backed catalogue store, including the
// filtered book search.
package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/server/lending"
	"github.com/dmitrijs2005/library/internal/server/models"
)

const bookColumns = `id, title, author, available, borrowed_by_user_id, due_date`

var dialect = goqu.Dialect("postgres")

// PostgresRepository implements book storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*models.Book, error) {
	b := &models.Book{}
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Available, &b.BorrowedByUserID, &b.DueDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) Create(ctx context.Context, book *models.Book) error {
	query :=
		`INSERT INTO books (id, title, author, available, borrowed_by_user_id, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		book.ID, book.Title, book.Author, book.Available, book.BorrowedByUserID, book.DueDate)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return scanBook(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 FOR UPDATE`
	return scanBook(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY title, id`
	return r.selectBooks(ctx, query)
}

// Update overwrites every column of the row with book.ID. A missing row
// yields common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, book *models.Book) error {
	query :=
		`UPDATE books
		 SET title = $2, author = $3, available = $4, borrowed_by_user_id = $5, due_date = $6
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		book.ID, book.Title, book.Author, book.Available, book.BorrowedByUserID, book.DueDate)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Search returns the books matching filter. Title and author match
// case-insensitively as substrings; every criterion present must hold.
func (r *PostgresRepository) Search(ctx context.Context, filter lending.BookFilter) ([]models.Book, error) {
	query, args, err := searchQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorBuildingQuery, err)
	}
	return r.selectBooks(ctx, query, args...)
}

func searchQuery(f lending.BookFilter) (string, []any, error) {
	var where []exp.Expression

	switch f.Shape() {
	case lending.ShapeAll:
	case lending.ShapeTitle:
		where = append(where, contains("title", *f.Title))
	case lending.ShapeAuthor:
		where = append(where, contains("author", *f.Author))
	case lending.ShapeAvailable:
		where = append(where, isAvailable(*f.Available))
	case lending.ShapeTitleAuthor:
		where = append(where, contains("title", *f.Title), contains("author", *f.Author))
	case lending.ShapeTitleAvailable:
		where = append(where, contains("title", *f.Title), isAvailable(*f.Available))
	case lending.ShapeAuthorAvailable:
		where = append(where, contains("author", *f.Author), isAvailable(*f.Available))
	case lending.ShapeTitleAuthorAvailable:
		where = append(where,
			contains("title", *f.Title), contains("author", *f.Author), isAvailable(*f.Available))
	default:
		return "", nil, fmt.Errorf("unsupported filter shape %s", f.Shape())
	}

	ds := dialect.From("books").
		Select("id", "title", "author", "available", "borrowed_by_user_id", "due_date").
		Where(where...).
		Order(goqu.C("title").Asc(), goqu.C("id").Asc()).
		Prepared(true)

	return ds.ToSQL()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func isAvailable(v bool) exp.LiteralExpression {
	return goqu.L("? = ?", goqu.C("available"), v)
}

func contains(column, s string) exp.BooleanExpression {
	return goqu.C(column).ILike("%" + likeEscaper.Replace(s) + "%")
}

func (r *PostgresRepository) selectBooks(ctx context.Context, query string, args ...any) ([]models.Book, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Book{}
	if err := sqlx.StructScan(rows, &result); err != nil {
		return nil, fmt.Errorf("scan books: %w", err)
	}
	return result, nil
}

func expectOneRow(res sql.Result) error {
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
