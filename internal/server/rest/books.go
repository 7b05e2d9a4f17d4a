package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/library/internal/server/lending"
)

type bookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

func (b bookRequest) validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return badRequest("title is required")
	}
	if strings.TrimSpace(b.Author) == "" {
		return badRequest("author is required")
	}
	return nil
}

func pathID(r *http.Request, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, badRequest("invalid %s id %q", entity, r.PathValue("id"))
	}
	return id, nil
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) addBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	book, err := s.books.AddBook(r.Context(), req.Title, req.Author)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

func (s *Server) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.books.ListBooks(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) getBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "book")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	book, err := s.books.GetBook(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) updateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "book")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	book, err := s.books.UpdateBook(r.Context(), id, req.Title, req.Author)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "book")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.books.DeleteBook(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// searchBooks reads the optional title, author and available query
// parameters. A parameter that is present filters even when empty.
func (s *Server) searchBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter lending.BookFilter
	if q.Has("title") {
		title := q.Get("title")
		filter.Title = &title
	}
	if q.Has("author") {
		author := q.Get("author")
		filter.Author = &author
	}
	if q.Has("available") {
		available, err := strconv.ParseBool(q.Get("available"))
		if err != nil {
			s.fail(w, r, badRequest("invalid available value %q", q.Get("available")))
			return
		}
		filter.Available = &available
	}

	books, err := s.books.SearchBooks(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) borrowBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "book")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		s.fail(w, r, badRequest("invalid user id %q", r.URL.Query().Get("userId")))
		return
	}

	book, err := s.books.BorrowBook(r.Context(), bookID, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) returnBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "book")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	book, err := s.books.ReturnBook(r.Context(), bookID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) bookHistory(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "book")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	records, err := s.books.BookHistory(r.Context(), bookID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
