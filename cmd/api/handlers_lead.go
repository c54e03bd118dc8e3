package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"listingflow/lead"
)

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req lead.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	l, err := s.leadService.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, lead.ErrInvalidID), errors.Is(err, lead.ErrValidation):
			s.writeError(w, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, lead.ErrPropertyNotFound):
			s.writeError(w, http.StatusNotFound, "Property not found", nil)
		default:
			s.logger.Error("create lead", "error", err)
			s.writeError(w, http.StatusInternalServerError, "Could not record inquiry", err)
		}
		return
	}
	s.writeSuccess(w, http.StatusCreated, "Inquiry recorded", l)
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := s.leadService.ListForBroker(r.Context(), brokerIDFromContext(r.Context()), r.URL.Query().Get("search"))
	if err != nil {
		if errors.Is(err, lead.ErrInvalidID) {
			s.writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		s.logger.Error("list leads", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Could not list leads", err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "OK", leads)
}
