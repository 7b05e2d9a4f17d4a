package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*name,\s*email,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*$`

	u := models.NewUser("Alice", "alice@example.com", "")
	mock.ExpectExec(q).
		WithArgs(u.ID.String(), "Alice", "alice@example.com", "MEMBER").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), &u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("duplicate key"))

	u := models.NewUser("Alice", "alice@example.com", "")
	err := repo.Create(context.Background(), &u)
	if err == nil || !regexp.MustCompile(`db error: .*duplicate key`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*name,\s*email,\s*role\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "role"}).
		AddRow(id.String(), "Alice", "alice@example.com", "LIBRARIAN")
	mock.ExpectQuery(q).WithArgs(id.String()).WillReturnRows(rows)

	u, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if u.ID != id || u.Name != "Alice" || u.Role != models.RoleLibrarian {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestGetForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE\s*$`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}).
			AddRow(id.String(), "Alice", "alice@example.com", "MEMBER"))

	u, err := repo.GetForUpdate(context.Background(), id)
	if err != nil {
		t.Fatalf("GetForUpdate error: %v", err)
	}
	if u.ID != id {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+users`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), uuid.New())
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGet_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+users`).WillReturnError(errors.New("boom"))

	_, err := repo.Get(context.Background(), uuid.New())
	if err == nil || errors.Is(err, common.ErrorNotFound) || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+name\s*=\s*\$2,\s*email\s*=\s*\$3,\s*role\s*=\s*\$4\s+WHERE\s+id\s*=\s*\$1\s*$`

	u := models.NewUser("Alice", "alice@example.com", models.RoleAdmin)
	mock.ExpectExec(q).
		WithArgs(u.ID.String(), "Alice", "alice@example.com", "ADMIN").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), &u); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Update(context.Background(), &u); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}

	mock.ExpectExec(q).WillReturnResult(sqlmock.NewErrorResult(errors.New("no count")))
	if err := repo.Update(context.Background(), &u); err == nil || !regexp.MustCompile(`rows affected error`).MatchString(err.Error()) {
		t.Fatalf("expected rows affected error, got %v", err)
	}
}

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT\s+EXISTS`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.Exists(context.Background(), id)
	if err != nil {
		t.Fatalf("Exists error: %v", err)
	}
	if ok {
		t.Fatal("expected false")
	}

	mock.ExpectQuery(`SELECT\s+EXISTS`).WillReturnError(errors.New("boom"))
	if _, err := repo.Exists(context.Background(), id); err == nil {
		t.Fatal("expected error")
	}
}
