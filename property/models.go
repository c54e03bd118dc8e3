package property

import "time"

// Transaction and listing types accepted by create and search.
const (
	TransactionRent = "rent"
	TransactionSale = "sale"

	TypeHouse     = "house"
	TypeApartment = "apartment"
)

// Location is the nested address stored as a JSONB column.
type Location struct {
	Address       string `json:"address"`
	AddressNumber string `json:"addressNumber,omitempty"`
	Street        string `json:"street,omitempty"`
	Neighborhood  string `json:"neighborhood,omitempty"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`
}

// Property mirrors the properties table.
type Property struct {
	ID          string
	BrokerID    string
	Title       string
	Description string
	Price       int64
	Tags        []string
	Bedrooms    int
	Bathrooms   int
	Parking     int
	Type        string
	Transaction string
	Location    Location
	Images      []string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateParams contains write parameters for creating listings.
type CreateParams struct {
	BrokerID    string
	Title       string
	Description string
	Price       int64
	Tags        []string
	Bedrooms    int
	Bathrooms   int
	Parking     int
	Type        string
	Transaction string
	Location    Location
}

// EditParams carries the optional fields of a partial listing update.
// Nil fields keep their stored value; Location keys merge into the stored
// address rather than replacing it wholesale.
type EditParams struct {
	Title       *string
	Description *string
	Price       *int64
	Tags        []string
	Location    map[string]string
}
