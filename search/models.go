// Package search answers listing discovery queries: PostgreSQL full-text
// search over title and description with optional structured filters, plus
// tag-overlap and description-substring lookups.
package search

import (
	"errors"
	"fmt"

	"listingflow/property"
)

// ErrBadFilter signals a filter value outside its accepted domain.
var ErrBadFilter = errors.New("search: invalid filter")

// ErrEmptyQuery signals a blank search term.
var ErrEmptyQuery = errors.New("search: query cannot be empty")

// Filters narrows a full-text query. Zero values mean "not set".
type Filters struct {
	Transaction string
	Type        string
	MinPrice    *int64
	MaxPrice    *int64
	MinBedrooms *int
	MaxBedrooms *int
	City        string
	State       string
}

// Validate checks every set filter against its domain and the min/max pairs
// against each other.
func (f Filters) Validate() error {
	if f.Transaction != "" && f.Transaction != property.TransactionRent && f.Transaction != property.TransactionSale {
		return fmt.Errorf("%w: transaction must be %q or %q", ErrBadFilter, property.TransactionRent, property.TransactionSale)
	}
	if f.Type != "" && f.Type != property.TypeHouse && f.Type != property.TypeApartment {
		return fmt.Errorf("%w: type must be %q or %q", ErrBadFilter, property.TypeHouse, property.TypeApartment)
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return fmt.Errorf("%w: min_price must not be negative", ErrBadFilter)
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return fmt.Errorf("%w: max_price must not be negative", ErrBadFilter)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("%w: min_price cannot exceed max_price", ErrBadFilter)
	}
	if f.MinBedrooms != nil && *f.MinBedrooms < 0 {
		return fmt.Errorf("%w: min_bedrooms must not be negative", ErrBadFilter)
	}
	if f.MaxBedrooms != nil && *f.MaxBedrooms < 0 {
		return fmt.Errorf("%w: max_bedrooms must not be negative", ErrBadFilter)
	}
	if f.MinBedrooms != nil && f.MaxBedrooms != nil && *f.MinBedrooms > *f.MaxBedrooms {
		return fmt.Errorf("%w: min_bedrooms cannot exceed max_bedrooms", ErrBadFilter)
	}
	return nil
}
