package broker

import "context"

// Store abstracts repository operations for the service.
type Store interface {
	GetByID(ctx context.Context, id string) (Broker, error)
	GetByEmail(ctx context.Context, email string) (Broker, error)
	Edit(ctx context.Context, id string, params EditParams) (Broker, error)
}

// Service exposes business-level broker profile operations.
type Service struct {
	repo Store
}

// NewService builds a Service using the provided repository.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// GetByID returns the broker for the given identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Broker, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail returns the broker registered under the given email.
func (s *Service) GetByEmail(ctx context.Context, email string) (Broker, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Edit applies a partial profile update.
func (s *Service) Edit(ctx context.Context, id string, params EditParams) (Broker, error) {
	return s.repo.Edit(ctx, id, params)
}
