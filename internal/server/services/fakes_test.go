package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/server/lending"
	"github.com/dmitrijs2005/library/internal/server/models"
	"github.com/dmitrijs2005/library/internal/server/repositories/books"
	"github.com/dmitrijs2005/library/internal/server/repositories/borrowings"
	"github.com/dmitrijs2005/library/internal/server/repositories/users"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// fakeStore keeps entities in maps. Writes are applied immediately, so tests
// check rollback through the sqlmock expectations rather than the maps.
type fakeStore struct {
	books      map[uuid.UUID]models.Book
	users      map[uuid.UUID]models.User
	borrowings map[uuid.UUID]models.BorrowingRecord

	// injected failures, keyed by "<repo>.<method>"
	fail map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:      map[uuid.UUID]models.Book{},
		users:      map[uuid.UUID]models.User{},
		borrowings: map[uuid.UUID]models.BorrowingRecord{},
		fail:       map[string]error{},
	}
}

func (s *fakeStore) addBook(b models.Book) models.Book {
	s.books[b.ID] = b
	return b
}

func (s *fakeStore) addUser(u models.User) models.User {
	s.users[u.ID] = u
	return u
}

func (s *fakeStore) addRecord(r models.BorrowingRecord) models.BorrowingRecord {
	s.borrowings[r.ID] = r
	return r
}

type fakeRepoManager struct {
	store *fakeStore
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Books(db dbx.DBTX) books.Repository         { return &fakeBooksRepo{m.store} }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository         { return &fakeUsersRepo{m.store} }
func (m *fakeRepoManager) Borrowings(db dbx.DBTX) borrowings.Repository {
	return &fakeBorrowingsRepo{m.store}
}

type fakeBooksRepo struct{ s *fakeStore }

func (r *fakeBooksRepo) Create(_ context.Context, b *models.Book) error {
	if err := r.s.fail["books.Create"]; err != nil {
		return err
	}
	r.s.books[b.ID] = *b
	return nil
}

func (r *fakeBooksRepo) Get(_ context.Context, id uuid.UUID) (*models.Book, error) {
	if err := r.s.fail["books.Get"]; err != nil {
		return nil, err
	}
	b, ok := r.s.books[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &b, nil
}

func (r *fakeBooksRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	if err := r.s.fail["books.GetForUpdate"]; err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *fakeBooksRepo) List(_ context.Context) ([]models.Book, error) {
	if err := r.s.fail["books.List"]; err != nil {
		return nil, err
	}
	out := []models.Book{}
	for _, b := range r.s.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *fakeBooksRepo) Update(_ context.Context, b *models.Book) error {
	if err := r.s.fail["books.Update"]; err != nil {
		return err
	}
	if _, ok := r.s.books[b.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.books[b.ID] = *b
	return nil
}

func (r *fakeBooksRepo) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.s.fail["books.Delete"]; err != nil {
		return err
	}
	if _, ok := r.s.books[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.books, id)
	return nil
}

func (r *fakeBooksRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	if err := r.s.fail["books.Exists"]; err != nil {
		return false, err
	}
	_, ok := r.s.books[id]
	return ok, nil
}

func (r *fakeBooksRepo) Search(ctx context.Context, f lending.BookFilter) ([]models.Book, error) {
	if err := r.s.fail["books.Search"]; err != nil {
		return nil, err
	}
	all, _ := r.List(ctx)
	out := []models.Book{}
	for _, b := range all {
		if f.Title != nil && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(*f.Title)) {
			continue
		}
		if f.Author != nil && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(*f.Author)) {
			continue
		}
		if f.Available != nil && b.Available != *f.Available {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type fakeUsersRepo struct{ s *fakeStore }

func (r *fakeUsersRepo) Create(_ context.Context, u *models.User) error {
	if err := r.s.fail["users.Create"]; err != nil {
		return err
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *fakeUsersRepo) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	if err := r.s.fail["users.Get"]; err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *fakeUsersRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := r.s.fail["users.GetForUpdate"]; err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *fakeUsersRepo) Update(_ context.Context, u *models.User) error {
	if err := r.s.fail["users.Update"]; err != nil {
		return err
	}
	if _, ok := r.s.users[u.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *fakeUsersRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	if err := r.s.fail["users.Exists"]; err != nil {
		return false, err
	}
	_, ok := r.s.users[id]
	return ok, nil
}

type fakeBorrowingsRepo struct{ s *fakeStore }

func (r *fakeBorrowingsRepo) Create(_ context.Context, rec *models.BorrowingRecord) error {
	if err := r.s.fail["borrowings.Create"]; err != nil {
		return err
	}
	r.s.borrowings[rec.ID] = *rec
	return nil
}

func (r *fakeBorrowingsRepo) Update(_ context.Context, rec *models.BorrowingRecord) error {
	if err := r.s.fail["borrowings.Update"]; err != nil {
		return err
	}
	if _, ok := r.s.borrowings[rec.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.borrowings[rec.ID] = *rec
	return nil
}

func (r *fakeBorrowingsRepo) CountActiveByUser(_ context.Context, userID uuid.UUID) (int, error) {
	if err := r.s.fail["borrowings.CountActiveByUser"]; err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range r.s.borrowings {
		if rec.UserID == userID && rec.Active() {
			n++
		}
	}
	return n, nil
}

func (r *fakeBorrowingsRepo) FindActiveByBook(_ context.Context, bookID uuid.UUID) (*models.BorrowingRecord, error) {
	if err := r.s.fail["borrowings.FindActiveByBook"]; err != nil {
		return nil, err
	}
	for _, rec := range r.s.borrowings {
		if rec.BookID == bookID && rec.Active() {
			return &rec, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeBorrowingsRepo) list(keep func(models.BorrowingRecord) bool) []models.BorrowingRecord {
	out := []models.BorrowingRecord{}
	for _, rec := range r.s.borrowings {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BorrowDate.After(out[j].BorrowDate) })
	return out
}

func (r *fakeBorrowingsRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.BorrowingRecord, error) {
	if err := r.s.fail["borrowings.ListByUser"]; err != nil {
		return nil, err
	}
	return r.list(func(rec models.BorrowingRecord) bool { return rec.UserID == userID }), nil
}

func (r *fakeBorrowingsRepo) ListByBook(_ context.Context, bookID uuid.UUID) ([]models.BorrowingRecord, error) {
	if err := r.s.fail["borrowings.ListByBook"]; err != nil {
		return nil, err
	}
	return r.list(func(rec models.BorrowingRecord) bool { return rec.BookID == bookID }), nil
}

// fakeRecorder remembers every reported outcome.
type fakeRecorder struct {
	ops  []string
	errs []error
}

func (f *fakeRecorder) LendingOperation(op string, err error) {
	f.ops = append(f.ops, op)
	f.errs = append(f.errs, err)
}
