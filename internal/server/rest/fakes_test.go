package rest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/library/internal/server/lending"
	"github.com/dmitrijs2005/library/internal/server/models"
)

// fakeBooks returns canned values and remembers the last call's arguments.
type fakeBooks struct {
	book    *models.Book
	books   []models.Book
	records []models.BorrowingRecord
	err     error

	gotID     uuid.UUID
	gotUserID uuid.UUID
	gotTitle  string
	gotAuthor string
	gotFilter lending.BookFilter
}

func (f *fakeBooks) AddBook(_ context.Context, title, author string) (*models.Book, error) {
	f.gotTitle, f.gotAuthor = title, author
	return f.book, f.err
}

func (f *fakeBooks) GetBook(_ context.Context, id uuid.UUID) (*models.Book, error) {
	f.gotID = id
	return f.book, f.err
}

func (f *fakeBooks) ListBooks(context.Context) ([]models.Book, error) {
	return f.books, f.err
}

func (f *fakeBooks) UpdateBook(_ context.Context, id uuid.UUID, title, author string) (*models.Book, error) {
	f.gotID, f.gotTitle, f.gotAuthor = id, title, author
	return f.book, f.err
}

func (f *fakeBooks) DeleteBook(_ context.Context, id uuid.UUID) error {
	f.gotID = id
	return f.err
}

func (f *fakeBooks) SearchBooks(_ context.Context, filter lending.BookFilter) ([]models.Book, error) {
	f.gotFilter = filter
	return f.books, f.err
}

func (f *fakeBooks) BorrowBook(_ context.Context, bookID, userID uuid.UUID) (*models.Book, error) {
	f.gotID, f.gotUserID = bookID, userID
	return f.book, f.err
}

func (f *fakeBooks) ReturnBook(_ context.Context, bookID uuid.UUID) (*models.Book, error) {
	f.gotID = bookID
	return f.book, f.err
}

func (f *fakeBooks) BookHistory(_ context.Context, bookID uuid.UUID) ([]models.BorrowingRecord, error) {
	f.gotID = bookID
	return f.records, f.err
}

type fakeUsers struct {
	user    *models.User
	records []models.BorrowingRecord
	err     error

	gotID      uuid.UUID
	gotProfile models.User
}

func (f *fakeUsers) RegisterUser(_ context.Context, name, email string, role models.UserRole) (*models.User, error) {
	f.gotProfile = models.User{Name: name, Email: email, Role: role}
	return f.user, f.err
}

func (f *fakeUsers) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.gotID = id
	return f.user, f.err
}

func (f *fakeUsers) UpdateUser(_ context.Context, id uuid.UUID, profile models.User) (*models.User, error) {
	f.gotID, f.gotProfile = id, profile
	return f.user, f.err
}

func (f *fakeUsers) UserBorrowings(_ context.Context, id uuid.UUID) ([]models.BorrowingRecord, error) {
	f.gotID = id
	return f.records, f.err
}

type observation struct {
	method, route string
	status        int
}

type fakeObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (f *fakeObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, observation{method, route, status})
}
