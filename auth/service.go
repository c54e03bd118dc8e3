package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"listingflow/broker"
)

var (
	// ErrUnknownEmail signals login with an email no broker registered.
	ErrUnknownEmail = errors.New("auth: no broker found with the provided email")
	// ErrWrongPassword signals login with a bad password for a known email.
	ErrWrongPassword = errors.New("auth: the provided password is incorrect")
	// ErrInvalidRefreshToken covers every refresh miss: unknown, expired and
	// revoked tokens all surface identically.
	ErrInvalidRefreshToken = errors.New("auth: invalid or expired refresh token")
	// ErrValidation signals missing or malformed signup input.
	ErrValidation = errors.New("auth: validation failed")
)

// PrincipalStore is the slice of broker persistence the auth flows need.
type PrincipalStore interface {
	Create(ctx context.Context, params broker.CreateParams) (broker.Broker, error)
	GetByEmail(ctx context.Context, email string) (broker.Broker, error)
	GetByID(ctx context.Context, id string) (broker.Broker, error)
}

// SessionStore is the refresh-token persistence the flows need.
type SessionStore interface {
	Store(ctx context.Context, brokerID, rawToken string, deviceInfo *string) error
	Verify(ctx context.Context, rawToken string) (*RefreshTokenRecord, error)
	Revoke(ctx context.Context, rawToken string) error
	RevokeAll(ctx context.Context, brokerID string) error
	Rotate(ctx context.Context, oldRawToken, brokerID, newRawToken string, deviceInfo *string) error
}

// Service implements the signup/login/refresh/logout lifecycle.
type Service struct {
	brokers  PrincipalStore
	sessions SessionStore
	issuer   *Issuer
}

// NewService wires the authentication service.
func NewService(brokers PrincipalStore, sessions SessionStore, issuer *Issuer) *Service {
	return &Service{
		brokers:  brokers,
		sessions: sessions,
		issuer:   issuer,
	}
}

// Signup registers a broker and opens a session for it.
func (s *Service) Signup(ctx context.Context, req SignupRequest, deviceInfo string) (broker.Broker, TokenPair, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		return broker.Broker{}, TokenPair{}, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if !ValidateEmail(req.Email) {
		return broker.Broker{}, TokenPair{}, fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if err := ValidatePassword(req.Password); err != nil {
		return broker.Broker{}, TokenPair{}, err
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return broker.Broker{}, TokenPair{}, fmt.Errorf("auth: hash password: %w", err)
	}

	var phone *string
	if p := strings.TrimSpace(req.Phone); p != "" {
		phone = &p
	}

	b, err := s.brokers.Create(ctx, broker.CreateParams{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        phone,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return broker.Broker{}, TokenPair{}, err
	}

	tokens, err := s.openSession(ctx, b, deviceInfo)
	if err != nil {
		return broker.Broker{}, TokenPair{}, err
	}

	return b, tokens, nil
}

// Login authenticates a broker by email and password and opens a session.
func (s *Service) Login(ctx context.Context, req LoginRequest, deviceInfo string) (broker.Broker, TokenPair, error) {
	if req.Email == "" || req.Password == "" {
		return broker.Broker{}, TokenPair{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	b, err := s.brokers.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, broker.ErrNotFound) {
			return broker.Broker{}, TokenPair{}, ErrUnknownEmail
		}
		return broker.Broker{}, TokenPair{}, err
	}

	if !CheckPassword(req.Password, b.PasswordHash) {
		return broker.Broker{}, TokenPair{}, ErrWrongPassword
	}

	tokens, err := s.openSession(ctx, b, deviceInfo)
	if err != nil {
		return broker.Broker{}, TokenPair{}, err
	}

	return b, tokens, nil
}

// Refresh exchanges a live refresh token for a new token pair, rotating the
// stored record. The old token stops verifying even if rotation is cut short.
func (s *Service) Refresh(ctx context.Context, rawToken, deviceInfo string) (broker.Broker, TokenPair, error) {
	if _, err := s.issuer.VerifyRefresh(rawToken); err != nil {
		return broker.Broker{}, TokenPair{}, ErrInvalidRefreshToken
	}

	rec, err := s.sessions.Verify(ctx, rawToken)
	if err != nil {
		return broker.Broker{}, TokenPair{}, err
	}
	if rec == nil {
		return broker.Broker{}, TokenPair{}, ErrInvalidRefreshToken
	}

	b, err := s.brokers.GetByID(ctx, rec.BrokerID)
	if err != nil {
		return broker.Broker{}, TokenPair{}, err
	}

	tokens, err := s.issuer.Issue(b.ID, b.Email, b.Role)
	if err != nil {
		return broker.Broker{}, TokenPair{}, fmt.Errorf("auth: issue tokens: %w", err)
	}

	if err := s.sessions.Rotate(ctx, rawToken, b.ID, tokens.RefreshToken, devicePtr(deviceInfo)); err != nil {
		return broker.Broker{}, TokenPair{}, err
	}

	return b, tokens, nil
}

// Logout revokes the presented refresh token. Absent or already-revoked
// tokens are a no-op.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, rawToken)
}

// LogoutAll revokes every live refresh token for the broker.
func (s *Service) LogoutAll(ctx context.Context, brokerID string) error {
	return s.sessions.RevokeAll(ctx, brokerID)
}

// VerifyAccess validates an access token and returns its claims.
func (s *Service) VerifyAccess(tokenString string) (*AccessClaims, error) {
	return s.issuer.VerifyAccess(tokenString)
}

func (s *Service) openSession(ctx context.Context, b broker.Broker, deviceInfo string) (TokenPair, error) {
	tokens, err := s.issuer.Issue(b.ID, b.Email, b.Role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: issue tokens: %w", err)
	}

	if err := s.sessions.Store(ctx, b.ID, tokens.RefreshToken, devicePtr(deviceInfo)); err != nil {
		return TokenPair{}, err
	}

	return tokens, nil
}

func devicePtr(deviceInfo string) *string {
	if deviceInfo == "" {
		unknown := "Unknown device"
		return &unknown
	}
	return &deviceInfo
}
