package property

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidID signals a listing identifier that is not a UUID.
	ErrInvalidID = errors.New("property: invalid id")
	// ErrValidation signals missing or malformed listing input.
	ErrValidation = errors.New("property: validation failed")
	// ErrBrokerNotFound signals a create against a broker that does not exist.
	ErrBrokerNotFound = errors.New("property: broker not found")
)

// Store abstracts repository operations for the service.
type Store interface {
	Create(ctx context.Context, params CreateParams) (Property, error)
	List(ctx context.Context, limit int) ([]Property, error)
	GetByID(ctx context.Context, id string) (Property, error)
	Edit(ctx context.Context, id string, params EditParams) (Property, error)
	UpdateImages(ctx context.Context, id string, images []string) (Property, error)
	SetActive(ctx context.Context, id string, active bool) (Property, error)
	Delete(ctx context.Context, id string) (Property, error)
}

// BrokerChecker verifies the owning broker exists before a listing is created.
type BrokerChecker interface {
	Exists(ctx context.Context, brokerID string) (bool, error)
}

// Service exposes business-level listing operations.
type Service struct {
	repo    Store
	brokers BrokerChecker
}

// NewService builds a Service using the provided repository and broker check.
func NewService(repo Store, brokers BrokerChecker) *Service {
	return &Service{repo: repo, brokers: brokers}
}

// Create validates and stores a new listing.
func (s *Service) Create(ctx context.Context, params CreateParams) (Property, error) {
	if err := validateCreate(params); err != nil {
		return Property{}, err
	}

	ok, err := s.brokers.Exists(ctx, params.BrokerID)
	if err != nil {
		return Property{}, err
	}
	if !ok {
		return Property{}, ErrBrokerNotFound
	}

	return s.repo.Create(ctx, params)
}

// List returns up to limit listings.
func (s *Service) List(ctx context.Context, limit int) ([]Property, error) {
	return s.repo.List(ctx, limit)
}

// GetByID returns the listing for the given identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Property, error) {
	if uuid.Validate(id) != nil {
		return Property{}, ErrInvalidID
	}
	return s.repo.GetByID(ctx, id)
}

// Edit applies a partial update to the listing.
func (s *Service) Edit(ctx context.Context, id string, params EditParams) (Property, error) {
	if uuid.Validate(id) != nil {
		return Property{}, ErrInvalidID
	}
	if params.Title == nil && params.Description == nil && params.Price == nil &&
		params.Tags == nil && len(params.Location) == 0 {
		return Property{}, fmt.Errorf("%w: no values to update", ErrValidation)
	}
	return s.repo.Edit(ctx, id, params)
}

// UpdateImages replaces the listing's image list.
func (s *Service) UpdateImages(ctx context.Context, id string, images []string) (Property, error) {
	if uuid.Validate(id) != nil {
		return Property{}, ErrInvalidID
	}
	if len(images) == 0 {
		return Property{}, fmt.Errorf("%w: no images to update", ErrValidation)
	}
	return s.repo.UpdateImages(ctx, id, images)
}

// SetActive flips the listing's visibility flag.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (Property, error) {
	if uuid.Validate(id) != nil {
		return Property{}, ErrInvalidID
	}
	return s.repo.SetActive(ctx, id, active)
}

// Delete removes the listing.
func (s *Service) Delete(ctx context.Context, id string) (Property, error) {
	if uuid.Validate(id) != nil {
		return Property{}, ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func validateCreate(params CreateParams) error {
	if params.BrokerID == "" {
		return fmt.Errorf("%w: missing broker id", ErrValidation)
	}
	if params.Title == "" {
		return fmt.Errorf("%w: missing title", ErrValidation)
	}
	if params.Description == "" {
		return fmt.Errorf("%w: missing description", ErrValidation)
	}
	if params.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if len(params.Tags) == 0 {
		return fmt.Errorf("%w: missing tags", ErrValidation)
	}
	if params.Bedrooms < 0 || params.Bathrooms < 0 || params.Parking < 0 {
		return fmt.Errorf("%w: rooms and parking cannot be negative", ErrValidation)
	}
	if params.Type != TypeHouse && params.Type != TypeApartment {
		return fmt.Errorf("%w: type must be %q or %q", ErrValidation, TypeHouse, TypeApartment)
	}
	if params.Transaction != TransactionRent && params.Transaction != TransactionSale {
		return fmt.Errorf("%w: transaction must be %q or %q", ErrValidation, TransactionRent, TransactionSale)
	}

	loc := params.Location
	if loc.Address == "" || loc.City == "" || loc.State == "" || loc.Zip == "" {
		return fmt.Errorf("%w: missing location data (address, city, state, zip)", ErrValidation)
	}
	return nil
}
