// Package rest exposes the library over HTTP/JSON.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/library/internal/logging"
	"github.com/dmitrijs2005/library/internal/server/lending"
	"github.com/dmitrijs2005/library/internal/server/models"
)

// BookService is the catalogue and circulation API the handlers call.
type BookService interface {
	AddBook(ctx context.Context, title, author string) (*models.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, title, author string) (*models.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
	SearchBooks(ctx context.Context, filter lending.BookFilter) ([]models.Book, error)
	BorrowBook(ctx context.Context, bookID, userID uuid.UUID) (*models.Book, error)
	ReturnBook(ctx context.Context, bookID uuid.UUID) (*models.Book, error)
	BookHistory(ctx context.Context, bookID uuid.UUID) ([]models.BorrowingRecord, error)
}

// UserService is the member API the handlers call.
type UserService interface {
	RegisterUser(ctx context.Context, name, email string, role models.UserRole) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, profile models.User) (*models.User, error)
	UserBorrowings(ctx context.Context, id uuid.UUID) ([]models.BorrowingRecord, error)
}

// RequestObserver receives one call per served request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	logger          logging.Logger
	books           BookService
	users           UserService
	observer        RequestObserver
	metricsHandler  http.Handler
}

func NewServer(address string, shutdownTimeout time.Duration, l logging.Logger, bs BookService, us UserService, observer RequestObserver, metricsHandler http.Handler) *Server {
	return &Server{
		address:         address,
		shutdownTimeout: shutdownTimeout,
		logger:          l.With("module", "http_server"),
		books:           bs,
		users:           us,
		observer:        observer,
		metricsHandler:  metricsHandler,
	}
}

// Handler returns the routed and instrumented API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "GET /ping", s.ping)

	s.handle(mux, "POST /api/books", s.addBook)
	s.handle(mux, "GET /api/books", s.listBooks)
	s.handle(mux, "GET /api/books/search", s.searchBooks)
	s.handle(mux, "GET /api/books/{id}", s.getBook)
	s.handle(mux, "PUT /api/books/{id}", s.updateBook)
	s.handle(mux, "DELETE /api/books/{id}", s.deleteBook)
	s.handle(mux, "POST /api/books/{id}/borrow", s.borrowBook)
	s.handle(mux, "POST /api/books/{id}/return", s.returnBook)
	s.handle(mux, "GET /api/books/{id}/borrowings", s.bookHistory)

	s.handle(mux, "POST /api/users", s.registerUser)
	s.handle(mux, "GET /api/users/{id}", s.getUser)
	s.handle(mux, "PUT /api/users/{id}", s.updateUser)
	s.handle(mux, "GET /api/users/{id}/borrowings", s.userBorrowings)

	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}

	return mux
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(pattern, h))
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		serveErr <- srv.Serve(listen)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
