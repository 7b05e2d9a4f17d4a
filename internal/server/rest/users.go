package rest

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/library/internal/server/models"
)

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u userRequest) toModel() (models.User, error) {
	if strings.TrimSpace(u.Name) == "" {
		return models.User{}, badRequest("name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return models.User{}, badRequest("email is required")
	}
	role, err := models.ParseUserRole(u.Role)
	if err != nil {
		return models.User{}, badRequest("%v", err)
	}
	return models.User{Name: u.Name, Email: u.Email, Role: role}, nil
}

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	profile, err := req.toModel()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.users.RegisterUser(r.Context(), profile.Name, profile.Email, profile.Role)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.users.GetUser(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// updateUser keeps the stored role when the request omits it.
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	profile, err := req.toModel()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Role == "" {
		profile.Role = ""
	}

	user, err := s.users.UpdateUser(r.Context(), id, profile)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) userBorrowings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	records, err := s.users.UserBorrowings(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
