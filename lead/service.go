package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"listingflow/property"
)

// ErrInvalidID signals a malformed lead or property id.
var ErrInvalidID = errors.New("lead: invalid id")

// ErrValidation signals a rejected inquiry payload.
var ErrValidation = errors.New("lead: validation failed")

// ErrPropertyNotFound signals an inquiry against a listing that does not
// exist.
var ErrPropertyNotFound = errors.New("lead: property not found")

// Store is the data access surface the lead service needs.
type Store interface {
	FindMatch(ctx context.Context, brokerID string, email, phone *string) (Lead, error)
	Create(ctx context.Context, brokerID string, email, phone *string) (Lead, error)
	EnrichContact(ctx context.Context, id string, email, phone *string) (Lead, error)
	LinkProperty(ctx context.Context, leadID, propertyID string) error
	PropertyIDs(ctx context.Context, leadID string) ([]string, error)
	ListForBroker(ctx context.Context, brokerID, search string) ([]Summary, error)
}

// PropertyFinder resolves the listing an inquiry is about.
type PropertyFinder interface {
	GetByID(ctx context.Context, id string) (property.Property, error)
}

// Service implements the inquiry flow over a store and a listing lookup.
type Service struct {
	store      Store
	properties PropertyFinder
}

// NewService wires a lead service.
func NewService(store Store, properties PropertyFinder) *Service {
	return &Service{store: store, properties: properties}
}

// Create records an inquiry against a listing. Repeat inquiries from the
// same contact reuse the broker's existing lead, filling in a missing
// contact field when the new payload carries one.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Lead, error) {
	if uuid.Validate(req.PropertyID) != nil {
		return Lead{}, fmt.Errorf("%w: property id must be a valid uuid", ErrInvalidID)
	}

	email := normalize(req.Email, true)
	phone := normalize(req.Phone, false)
	if email == nil && phone == nil {
		return Lead{}, fmt.Errorf("%w: at least one of email and phone is required", ErrValidation)
	}

	p, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			return Lead{}, ErrPropertyNotFound
		}
		return Lead{}, fmt.Errorf("lead: resolve property: %w", err)
	}

	l, err := s.store.FindMatch(ctx, p.BrokerID, email, phone)
	switch {
	case err == nil:
		if missingContact(l, email, phone) {
			if l, err = s.store.EnrichContact(ctx, l.ID, email, phone); err != nil {
				return Lead{}, err
			}
		}
	case errors.Is(err, ErrNotFound):
		if l, err = s.store.Create(ctx, p.BrokerID, email, phone); err != nil {
			return Lead{}, err
		}
	default:
		return Lead{}, err
	}

	if err := s.store.LinkProperty(ctx, l.ID, p.ID); err != nil {
		return Lead{}, err
	}

	ids, err := s.store.PropertyIDs(ctx, l.ID)
	if err != nil {
		return Lead{}, err
	}
	l.PropertyIDs = ids
	return l, nil
}

// ListForBroker fetches the broker's leads, optionally narrowed by an email
// or phone substring.
func (s *Service) ListForBroker(ctx context.Context, brokerID, search string) ([]Summary, error) {
	if uuid.Validate(brokerID) != nil {
		return nil, fmt.Errorf("%w: broker id must be a valid uuid", ErrInvalidID)
	}
	return s.store.ListForBroker(ctx, brokerID, strings.TrimSpace(search))
}

func normalize(v *string, lower bool) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	if lower {
		s = strings.ToLower(s)
	}
	return &s
}

// missingContact reports whether the payload carries a contact field the
// existing lead lacks.
func missingContact(l Lead, email, phone *string) bool {
	if l.Email == nil && email != nil {
		return true
	}
	if l.Phone == nil && phone != nil {
		return true
	}
	return false
}
