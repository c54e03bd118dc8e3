// Package lead handles buyer inquiries. A lead belongs to the broker who
// owns the inquired property and is deduplicated per broker by email or
// phone, so repeat inquiries from the same person attach to one record.
package lead

import "time"

// Lead is one prospective client for a broker. At least one of Email and
// Phone is always set.
type Lead struct {
	ID          string    `json:"id"`
	BrokerID    string    `json:"brokerId"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	PropertyIDs []string  `json:"propertyIds"`
}

// Summary is a lead enriched with the linked listings, as shown on a
// broker's lead list.
type Summary struct {
	ID             string    `json:"id"`
	Email          *string   `json:"email,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	PropertyCount  int       `json:"propertyCount"`
	PropertyIDs    []string  `json:"propertyIds"`
	PropertyTitles []string  `json:"propertyTitles"`
}

// CreateRequest is the public inquiry payload.
type CreateRequest struct {
	PropertyID string  `json:"propertyId"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}
