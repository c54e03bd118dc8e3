package auth

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestRefreshTokenStore_Integration connects to a real PostgreSQL via
// DATABASE_URL and verifies the store/verify/revoke/rotate lifecycle against
// actual SQL semantics.
func TestRefreshTokenStore_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is empty; set it to a live PostgreSQL to run integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	defer pool.Close()

	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'refresh_tokens')`).Scan(&exists); err != nil || !exists {
		t.Skip("database schema missing; apply the files under migrations/ first")
	}

	var brokerID string
	email := fmt.Sprintf("rt+%d@example.com", time.Now().UnixNano())
	if err := pool.QueryRow(ctx,
		`INSERT INTO brokers (first_name, last_name, email, password_hash, role) VALUES ('Rita', 'Token', $1, 'x', 'broker') RETURNING id`,
		email).Scan(&brokerID); err != nil {
		t.Fatalf("seed broker: %v", err)
	}

	store := NewRefreshTokenStore(pool)
	device := "integration-test"

	raw := fmt.Sprintf("raw-%d", time.Now().UnixNano())
	if err := store.Store(ctx, brokerID, raw, &device); err != nil {
		t.Fatalf("store: %v", err)
	}

	rec, err := store.Verify(ctx, raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if rec == nil || rec.BrokerID != brokerID {
		t.Fatalf("expected live record for broker %s, got %+v", brokerID, rec)
	}
	if rec.TokenHash != HashToken(raw) {
		t.Fatal("stored digest must be the sha256 of the raw token")
	}
	if got := time.Until(rec.ExpiresAt); got < 6*24*time.Hour {
		t.Fatalf("expected ~7 day TTL, remaining %v", got)
	}

	// Rotation: old stops verifying, new verifies.
	newRaw := raw + "-next"
	if err := store.Rotate(ctx, raw, brokerID, newRaw, &device); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rec, _ := store.Verify(ctx, raw); rec != nil {
		t.Fatal("rotated-out token still verifies")
	}
	if rec, _ := store.Verify(ctx, newRaw); rec == nil {
		t.Fatal("rotated-in token does not verify")
	}

	// Revoke is idempotent and permanent.
	if err := store.Revoke(ctx, newRaw); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := store.Revoke(ctx, newRaw); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if rec, _ := store.Verify(ctx, newRaw); rec != nil {
		t.Fatal("revoked token still verifies")
	}

	// RevokeAll only touches the one broker.
	var otherID string
	otherEmail := fmt.Sprintf("rt-other+%d@example.com", time.Now().UnixNano())
	if err := pool.QueryRow(ctx,
		`INSERT INTO brokers (first_name, last_name, email, password_hash, role) VALUES ('Omar', 'Token', $1, 'x', 'broker') RETURNING id`,
		otherEmail).Scan(&otherID); err != nil {
		t.Fatalf("seed second broker: %v", err)
	}

	mine := raw + "-mine"
	theirs := raw + "-theirs"
	if err := store.Store(ctx, brokerID, mine, nil); err != nil {
		t.Fatalf("store mine: %v", err)
	}
	if err := store.Store(ctx, otherID, theirs, nil); err != nil {
		t.Fatalf("store theirs: %v", err)
	}
	if err := store.RevokeAll(ctx, brokerID); err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if rec, _ := store.Verify(ctx, mine); rec != nil {
		t.Fatal("revoke-all missed a live token")
	}
	if rec, _ := store.Verify(ctx, theirs); rec == nil {
		t.Fatal("revoke-all crossed broker boundary")
	}

	// Expired rows disappear via cleanup.
	if _, err := pool.Exec(ctx,
		`INSERT INTO refresh_tokens (broker_id, token_hash, expires_at) VALUES ($1, $2, NOW() - INTERVAL '1 hour')`,
		brokerID, HashToken("long-gone")); err != nil {
		t.Fatalf("seed expired token: %v", err)
	}
	removed, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed < 1 {
		t.Fatalf("expected at least one expired row removed, got %d", removed)
	}
}
