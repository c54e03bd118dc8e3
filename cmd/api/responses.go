package main

import (
	"encoding/json"
	"net/http"
	"time"

	"listingflow/broker"
	"listingflow/property"
)

// envelope is the JSON shape of every response.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func (s *Server) writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Status: "success", Message: message, Data: data}); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError sends an error envelope. The underlying error is only included
// when the process runs with exposed errors, so production responses never
// leak driver details.
func (s *Server) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := envelope{Status: "error", Message: message}
	if err != nil && s.exposeErrors {
		resp.Error = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		s.logger.Error("encode response", "error", encErr)
	}
}

type brokerResponse struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role"`
	Admin     bool    `json:"admin"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

func toBrokerResponse(b broker.Broker) brokerResponse {
	return brokerResponse{
		ID:        b.ID,
		FirstName: b.FirstName,
		LastName:  b.LastName,
		Email:     b.Email,
		Phone:     b.Phone,
		Role:      b.Role,
		Admin:     b.Admin,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
	}
}

type propertyResponse struct {
	ID          string            `json:"id"`
	BrokerID    string            `json:"brokerId"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       int64             `json:"price"`
	Tags        []string          `json:"tags"`
	Bedrooms    int               `json:"bedrooms"`
	Bathrooms   int               `json:"bathrooms"`
	Parking     int               `json:"parking"`
	Type        string            `json:"type"`
	Transaction string            `json:"transaction"`
	Location    property.Location `json:"location"`
	Images      []string          `json:"images"`
	Active      bool              `json:"active"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

func toPropertyResponse(p property.Property) propertyResponse {
	resp := propertyResponse{
		ID:          p.ID,
		BrokerID:    p.BrokerID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Tags:        p.Tags,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Parking:     p.Parking,
		Type:        p.Type,
		Transaction: p.Transaction,
		Location:    p.Location,
		Images:      p.Images,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	return resp
}

func toPropertyResponses(props []property.Property) []propertyResponse {
	out := make([]propertyResponse, 0, len(props))
	for _, p := range props {
		out = append(out, toPropertyResponse(p))
	}
	return out
}
