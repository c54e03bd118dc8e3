package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"listingflow/auth"
	"listingflow/broker"
	"listingflow/lead"
	"listingflow/metrics"
	"listingflow/property"
	"listingflow/search"
)

type ctxKey int

const (
	ctxKeyBrokerID ctxKey = iota
	ctxKeyRole
)

// Uploader stores one listing image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
}

// Server holds the wired services and exposes the HTTP surface.
type Server struct {
	logger *slog.Logger

	authService     *auth.Service
	brokerService   *broker.Service
	propertyService *property.Service
	searchService   *search.Service
	leadService     *lead.Service
	uploader        Uploader

	pool *pgxpool.Pool

	allowedOrigins []string
	exposeErrors   bool
}

// routes assembles the full route table.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/broker/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/broker/login", s.handleLogin)
	mux.HandleFunc("POST /auth/broker/refresh", s.handleRefresh)
	mux.HandleFunc("POST /auth/broker/logout", s.handleLogout)
	mux.HandleFunc("POST /auth/broker/logout-all", s.requireAuth(s.handleLogoutAll))
	mux.HandleFunc("GET /auth/broker/me", s.requireAuth(s.handleMe))

	mux.HandleFunc("GET /brokers/{id}", s.handleGetBroker)
	mux.HandleFunc("GET /brokers/email/{email}", s.handleGetBrokerByEmail)
	mux.HandleFunc("PUT /brokers/{id}", s.requireAuth(s.handleEditBroker))

	mux.HandleFunc("POST /properties", s.requireAuth(s.handleCreateProperty))
	mux.HandleFunc("GET /properties", s.handleListProperties)
	mux.HandleFunc("GET /properties/{id}", s.handleGetProperty)
	mux.HandleFunc("PUT /properties/{id}", s.requireAuth(s.handleEditProperty))
	mux.HandleFunc("DELETE /properties/{id}", s.requireAuth(s.handleDeleteProperty))
	mux.HandleFunc("PUT /properties/{id}/images", s.requireAuth(s.handleUpdateImages))
	mux.HandleFunc("PUT /properties/{id}/active", s.requireAuth(s.handleSetActive))

	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /search/tags", s.handleSearchTags)
	mux.HandleFunc("GET /search/description", s.handleSearchDescription)

	mux.HandleFunc("POST /leads", s.handleCreateLead)
	mux.HandleFunc("GET /leads", s.requireAuth(s.handleListLeads))

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	return s.withCORS(s.withLogging(s.withMetrics(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pool.Ping(ctx); err != nil {
			s.writeError(w, http.StatusServiceUnavailable, "Database unreachable", err)
			return
		}
	}
	s.writeSuccess(w, http.StatusOK, "OK", nil)
}
