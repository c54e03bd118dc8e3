package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"listingflow/search"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := search.Filters{
		Transaction: q.Get("transaction"),
		Type:        q.Get("type"),
		City:        q.Get("city"),
		State:       q.Get("state"),
	}

	var parseErr error
	parseInt64 := func(name string) *int64 {
		raw := q.Get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			parseErr = errors.New(name + " must be a number")
			return nil
		}
		return &v
	}
	parseInt := func(name string) *int {
		raw := q.Get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			parseErr = errors.New(name + " must be a number")
			return nil
		}
		return &v
	}

	filters.MinPrice = parseInt64("min_price")
	filters.MaxPrice = parseInt64("max_price")
	filters.MinBedrooms = parseInt("min_bedrooms")
	filters.MaxBedrooms = parseInt("max_bedrooms")
	if parseErr != nil {
		s.writeError(w, http.StatusBadRequest, parseErr.Error(), nil)
		return
	}

	props, err := s.searchService.Query(r.Context(), q.Get("q"), filters)
	if err != nil {
		s.searchError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "OK", toPropertyResponses(props))
}

func (s *Server) handleSearchTags(w http.ResponseWriter, r *http.Request) {
	tags := strings.Split(r.URL.Query().Get("tags"), ",")
	props, err := s.searchService.ByTags(r.Context(), tags)
	if err != nil {
		s.searchError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "OK", toPropertyResponses(props))
}

func (s *Server) handleSearchDescription(w http.ResponseWriter, r *http.Request) {
	props, err := s.searchService.ByDescription(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.searchError(w, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "OK", toPropertyResponses(props))
}

func (s *Server) searchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, search.ErrEmptyQuery), errors.Is(err, search.ErrBadFilter):
		s.writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		s.logger.Error("search", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Search failed", err)
	}
}
