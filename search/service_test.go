package search

import (
	"context"
	"errors"
	"testing"

	"listingflow/property"
)

type fakeStore struct {
	lastQuery   string
	lastFilters Filters
	lastTags    []string
	lastTerm    string
	results     []property.Property
}

func (f *fakeStore) FullText(_ context.Context, query string, filters Filters) ([]property.Property, error) {
	f.lastQuery = query
	f.lastFilters = filters
	return f.results, nil
}

func (f *fakeStore) ByTags(_ context.Context, tags []string) ([]property.Property, error) {
	f.lastTags = tags
	return f.results, nil
}

func (f *fakeStore) ByDescription(_ context.Context, term string) ([]property.Property, error) {
	f.lastTerm = term
	return f.results, nil
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestQueryTrimsAndForwards(t *testing.T) {
	store := &fakeStore{results: []property.Property{{ID: "p1"}}}
	svc := NewService(store)

	got, err := svc.Query(context.Background(), "  garden apartment  ", Filters{City: "Austin"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("unexpected results: %+v", got)
	}
	if store.lastQuery != "garden apartment" {
		t.Fatalf("query not trimmed: %q", store.lastQuery)
	}
	if store.lastFilters.City != "Austin" {
		t.Fatalf("filters not forwarded: %+v", store.lastFilters)
	}
}

func TestQueryRejectsEmptyTerm(t *testing.T) {
	svc := NewService(&fakeStore{})

	if _, err := svc.Query(context.Background(), "   ", Filters{}); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestFilterValidation(t *testing.T) {
	cases := []struct {
		name    string
		filters Filters
		wantErr bool
	}{
		{"empty is valid", Filters{}, false},
		{"valid enums", Filters{Transaction: property.TransactionRent, Type: property.TypeHouse}, false},
		{"bad transaction", Filters{Transaction: "lease"}, true},
		{"bad type", Filters{Type: "castle"}, true},
		{"negative min price", Filters{MinPrice: int64Ptr(-1)}, true},
		{"negative max bedrooms", Filters{MaxBedrooms: intPtr(-2)}, true},
		{"min price above max", Filters{MinPrice: int64Ptr(500), MaxPrice: int64Ptr(100)}, true},
		{"min bedrooms above max", Filters{MinBedrooms: intPtr(4), MaxBedrooms: intPtr(2)}, true},
		{"price range ok", Filters{MinPrice: int64Ptr(100), MaxPrice: int64Ptr(500)}, false},
		{"bedroom range ok", Filters{MinBedrooms: intPtr(1), MaxBedrooms: intPtr(4)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filters.Validate()
			if tc.wantErr && !errors.Is(err, ErrBadFilter) {
				t.Fatalf("expected ErrBadFilter, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestQueryRejectsBadFilters(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	_, err := svc.Query(context.Background(), "house", Filters{Transaction: "barter"})
	if !errors.Is(err, ErrBadFilter) {
		t.Fatalf("expected ErrBadFilter, got %v", err)
	}
	if store.lastQuery != "" {
		t.Fatal("store should not be hit on invalid filters")
	}
}

func TestByTagsDropsBlankEntries(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	if _, err := svc.ByTags(context.Background(), []string{" pool ", "", "  "}); err != nil {
		t.Fatalf("by tags: %v", err)
	}
	if len(store.lastTags) != 1 || store.lastTags[0] != "pool" {
		t.Fatalf("tags not cleaned: %v", store.lastTags)
	}

	if _, err := svc.ByTags(context.Background(), []string{"", "  "}); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery for all-blank tags, got %v", err)
	}
}

func TestByDescriptionRequiresTerm(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	if _, err := svc.ByDescription(context.Background(), "balcony"); err != nil {
		t.Fatalf("by description: %v", err)
	}
	if store.lastTerm != "balcony" {
		t.Fatalf("term not forwarded: %q", store.lastTerm)
	}

	if _, err := svc.ByDescription(context.Background(), ""); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}
