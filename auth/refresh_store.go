package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RefreshTokenStore persists refresh-token digests with expiry and revocation
// metadata, enabling server-side invalidation of otherwise self-contained
// tokens.
type RefreshTokenStore struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenStore wires a pgxpool-backed store.
func NewRefreshTokenStore(pool *pgxpool.Pool) *RefreshTokenStore {
	return &RefreshTokenStore{pool: pool}
}

// HashToken computes the one-way digest stored in place of the raw token.
func HashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// Store inserts a new record for the raw token with a fixed TTL from issuance
// time. Records are never overwritten.
func (s *RefreshTokenStore) Store(ctx context.Context, brokerID, rawToken string, deviceInfo *string) error {
	const insertSQL = `
		INSERT INTO refresh_tokens (broker_id, token_hash, expires_at, device_info)
		VALUES ($1, $2, NOW() + make_interval(secs => $3), $4)
	`

	_, err := s.pool.Exec(ctx, insertSQL, brokerID, HashToken(rawToken), RefreshTokenTTL.Seconds(), deviceInfo)
	if err != nil {
		return fmt.Errorf("auth: store refresh token: %w", err)
	}
	return nil
}

// Verify looks up a live record for the raw token. It returns nil on any miss:
// a token that never existed, expired, or was revoked is indistinguishable to
// the caller.
func (s *RefreshTokenStore) Verify(ctx context.Context, rawToken string) (*RefreshTokenRecord, error) {
	const selectSQL = `
		SELECT id, broker_id, token_hash, expires_at, created_at, revoked_at, device_info
		FROM refresh_tokens
		WHERE token_hash = $1
		  AND expires_at > NOW()
		  AND revoked_at IS NULL
	`

	var rec RefreshTokenRecord
	err := s.pool.QueryRow(ctx, selectSQL, HashToken(rawToken)).Scan(
		&rec.ID,
		&rec.BrokerID,
		&rec.TokenHash,
		&rec.ExpiresAt,
		&rec.CreatedAt,
		&rec.RevokedAt,
		&rec.DeviceInfo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth: verify refresh token: %w", err)
	}

	return &rec, nil
}

// Revoke marks the matching record revoked. It is idempotent: revoking an
// absent or already-revoked token is a no-op.
func (s *RefreshTokenStore) Revoke(ctx context.Context, rawToken string) error {
	const updateSQL = `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE token_hash = $1 AND revoked_at IS NULL
	`

	if _, err := s.pool.Exec(ctx, updateSQL, HashToken(rawToken)); err != nil {
		return fmt.Errorf("auth: revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAll marks every live record for the broker revoked ("logout
// everywhere"). Other brokers' records are untouched.
func (s *RefreshTokenStore) RevokeAll(ctx context.Context, brokerID string) error {
	const updateSQL = `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE broker_id = $1 AND revoked_at IS NULL
	`

	if _, err := s.pool.Exec(ctx, updateSQL, brokerID); err != nil {
		return fmt.Errorf("auth: revoke all refresh tokens: %w", err)
	}
	return nil
}

// Rotate revokes the old token and stores the new one. The two statements run
// without a transaction: a crash between them leaves the old token revoked and
// no replacement stored, which forces a fresh login rather than leaving a
// usable stale credential.
func (s *RefreshTokenStore) Rotate(ctx context.Context, oldRawToken, brokerID, newRawToken string, deviceInfo *string) error {
	if err := s.Revoke(ctx, oldRawToken); err != nil {
		return err
	}
	return s.Store(ctx, brokerID, newRawToken, deviceInfo)
}

// CleanupExpired deletes records past their expiry and returns how many were
// removed.
func (s *RefreshTokenStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("auth: cleanup expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
