package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"listingflow/auth"
	"listingflow/broker"
	"listingflow/metrics"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	b, pair, err := s.authService.Signup(r.Context(), req, r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrValidation), errors.Is(err, auth.ErrWeakPassword):
			s.writeError(w, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, broker.ErrDuplicateEmail):
			s.writeError(w, http.StatusBadRequest, "A broker with this email already exists", nil)
		default:
			s.logger.Error("signup", "error", err)
			s.writeError(w, http.StatusInternalServerError, "Could not create broker", err)
		}
		return
	}

	setSessionCookies(w, pair)
	s.writeSuccess(w, http.StatusCreated, "Broker created successfully", toBrokerResponse(b))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	b, pair, err := s.authService.Login(r.Context(), req, r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrValidation):
			metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
			s.writeError(w, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, auth.ErrUnknownEmail):
			metrics.LoginAttemptsTotal.WithLabelValues("unknown_email").Inc()
			s.writeError(w, http.StatusNotFound, "No broker found with the provided email", nil)
		case errors.Is(err, auth.ErrWrongPassword):
			metrics.LoginAttemptsTotal.WithLabelValues("wrong_password").Inc()
			s.writeError(w, http.StatusUnauthorized, "The provided password is incorrect", nil)
		default:
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
			s.logger.Error("login", "error", err)
			s.writeError(w, http.StatusInternalServerError, "Could not log in", err)
		}
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	setSessionCookies(w, pair)
	s.writeSuccess(w, http.StatusOK, "Logged in successfully", toBrokerResponse(b))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token := cookieValue(r, refreshCookieName)
	if token == "" {
		s.writeError(w, http.StatusUnauthorized, "Refresh token required", nil)
		return
	}

	b, pair, err := s.authService.Refresh(r.Context(), token, r.UserAgent())
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			metrics.TokenRefreshTotal.WithLabelValues("rejected").Inc()
			clearSessionCookies(w)
			s.writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token", nil)
			return
		}
		metrics.TokenRefreshTotal.WithLabelValues("error").Inc()
		s.logger.Error("refresh", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Could not refresh session", err)
		return
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	setSessionCookies(w, pair)
	s.writeSuccess(w, http.StatusOK, "Session refreshed", toBrokerResponse(b))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.authService.Logout(r.Context(), cookieValue(r, refreshCookieName)); err != nil {
		s.logger.Error("logout", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Could not log out", err)
		return
	}
	clearSessionCookies(w)
	s.writeSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := s.authService.LogoutAll(r.Context(), brokerIDFromContext(r.Context())); err != nil {
		s.logger.Error("logout all", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Could not log out everywhere", err)
		return
	}
	clearSessionCookies(w)
	s.writeSuccess(w, http.StatusOK, "Logged out on all devices", nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	b, err := s.brokerService.GetByID(r.Context(), brokerIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, broker.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Broker not found", nil)
			return
		}
		s.logger.Error("me", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Could not load broker", err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "OK", toBrokerResponse(b))
}
