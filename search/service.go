package search

import (
	"context"
	"strings"

	"listingflow/property"
)

// Store is the data access surface the search service needs.
type Store interface {
	FullText(ctx context.Context, query string, filters Filters) ([]property.Property, error)
	ByTags(ctx context.Context, tags []string) ([]property.Property, error)
	ByDescription(ctx context.Context, term string) ([]property.Property, error)
}

// Service validates search input before hitting the store.
type Service struct {
	store Store
}

// NewService wires a search service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Query runs a ranked full-text search. The query term is required; every
// filter is optional but validated when set.
func (s *Service) Query(ctx context.Context, query string, filters Filters) ([]property.Property, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	return s.store.FullText(ctx, query, filters)
}

// ByTags fetches listings tagged with any of the given tags. Blank entries
// are dropped before the lookup.
func (s *Service) ByTags(ctx context.Context, tags []string) ([]property.Property, error) {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return nil, ErrEmptyQuery
	}
	return s.store.ByTags(ctx, clean)
}

// ByDescription fetches listings whose description contains the term.
func (s *Service) ByDescription(ctx context.Context, term string) ([]property.Property, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyQuery
	}
	return s.store.ByDescription(ctx, term)
}
