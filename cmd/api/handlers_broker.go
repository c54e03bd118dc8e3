package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"listingflow/auth"
	"listingflow/broker"
)

func (s *Server) handleGetBroker(w http.ResponseWriter, r *http.Request) {
	b, err := s.brokerService.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, broker.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Broker not found", nil)
			return
		}
		s.logger.Error("get broker", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Could not load broker", err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "OK", toBrokerResponse(b))
}

func (s *Server) handleGetBrokerByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.PathValue("email")))
	b, err := s.brokerService.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, broker.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Broker not found", nil)
			return
		}
		s.logger.Error("get broker by email", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Could not load broker", err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "OK", toBrokerResponse(b))
}

type editBrokerRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Password  *string `json:"password"`
}

// handleEditBroker lets a broker change their own profile. Email and
// password changes pass the same validation as signup.
func (s *Server) handleEditBroker(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id != brokerIDFromContext(r.Context()) {
		s.writeError(w, http.StatusForbidden, "You can only edit your own profile", nil)
		return
	}

	var req editBrokerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	params := broker.EditParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !auth.ValidateEmail(email) {
			s.writeError(w, http.StatusBadRequest, "Invalid email format", nil)
			return
		}
		params.Email = &email
	}
	if req.Password != nil {
		if err := auth.ValidatePassword(*req.Password); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		digest, err := auth.HashPassword(*req.Password)
		if err != nil {
			s.logger.Error("hash password", "error", err)
			s.writeError(w, http.StatusInternalServerError, "Could not update broker", err)
			return
		}
		params.PasswordHash = &digest
	}

	b, err := s.brokerService.Edit(r.Context(), id, params)
	if err != nil {
		switch {
		case errors.Is(err, broker.ErrNotFound):
			s.writeError(w, http.StatusNotFound, "Broker not found", nil)
		case errors.Is(err, broker.ErrDuplicateEmail):
			s.writeError(w, http.StatusBadRequest, "A broker with this email already exists", nil)
		default:
			s.logger.Error("edit broker", "error", err)
			s.writeError(w, http.StatusInternalServerError, "Could not update broker", err)
		}
		return
	}
	s.writeSuccess(w, http.StatusOK, "Broker updated successfully", toBrokerResponse(b))
}
