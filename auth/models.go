package auth

import "time"

// TokenPair bundles the two credentials issued for a session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RefreshTokenRecord mirrors the refresh_tokens table. Only a one-way digest
// of the raw token is ever persisted; possession of the digest alone cannot
// forge a session.
type RefreshTokenRecord struct {
	ID         string
	BrokerID   string
	TokenHash  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	RevokedAt  *time.Time
	DeviceInfo *string
}

// SignupRequest contains broker registration data supplied by callers.
type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

// LoginRequest contains broker login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const (
	// AccessTokenTTL bounds how long a signed access token verifies.
	AccessTokenTTL = 15 * time.Minute
	// RefreshTokenTTL bounds both the refresh JWT and the stored record.
	RefreshTokenTTL = 7 * 24 * time.Hour
)
