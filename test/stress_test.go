package test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"listingflow/auth"
	"listingflow/broker"
	"listingflow/lead"
	"listingflow/property"
	"listingflow/test/infra"
)

const concurrency = 16

func dockerAvailable(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, "docker", "info")
	return cmd.Run() == nil
}

// setupPool provisions a migrated database, preferring an operator-supplied
// DSN over a throwaway container.
func setupPool(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	var (
		pgC        *infra.PGContainer
		dsn        string
		err        error
		usedShared bool
	)

	switch {
	case os.Getenv("STRESS_TEST_PG_DSN") != "":
		dsn = os.Getenv("STRESS_TEST_PG_DSN")
		usedShared = true
		pgC = &infra.PGContainer{}
	case dockerAvailable(ctx):
		pgC, dsn, err = infra.StartPostgres16(ctx, "")
		if err != nil {
			t.Fatalf("start postgres: %v", err)
		}
	default:
		t.Skip("no Docker and no STRESS_TEST_PG_DSN; skipping")
	}
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	pool, teardown, err := infra.ApplyMigrations(ctx, dsn, usedShared)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
		if err := teardown(context.Background()); err != nil {
			t.Logf("teardown warning: %v", err)
		}
	})

	return pool
}

func signupBroker(t *testing.T, ctx context.Context, svc *auth.Service, email string) (broker.Broker, auth.TokenPair) {
	t.Helper()
	b, pair, err := svc.Signup(ctx, auth.SignupRequest{
		FirstName: "Stress",
		LastName:  "Tester",
		Email:     email,
		Password:  "Str0ng!Pass",
	}, "stress-test")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	return b, pair
}

// TestConcurrentRefreshRotation races many refreshes of the same token. The
// rotation is not transactional, so more than one may momentarily succeed,
// but once the dust settles the original token must be dead and every token
// handed out must verify against the store.
func TestConcurrentRefreshRotation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pool := setupPool(t, ctx)

	brokerRepo := broker.NewRepository(pool)
	sessions := auth.NewRefreshTokenStore(pool)
	svc := auth.NewService(brokerRepo, sessions, auth.NewIssuer("stress-secret", ""))

	_, pair := signupBroker(t, ctx, svc, "rotation@example.com")

	var successes atomic.Int64
	newTokens := make(chan string, concurrency)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			_, rotated, err := svc.Refresh(gctx, pair.RefreshToken, "stress-test")
			if err != nil {
				return nil // losing the race is expected
			}
			successes.Add(1)
			newTokens <- rotated.RefreshToken
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("refresh group: %v", err)
	}
	close(newTokens)

	if successes.Load() == 0 {
		t.Fatal("every refresh lost the race; expected at least one rotation")
	}

	if rec, err := sessions.Verify(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("verify old token: %v", err)
	} else if rec != nil {
		t.Fatal("original refresh token still verifies after rotation")
	}

	for token := range newTokens {
		rec, err := sessions.Verify(ctx, token)
		if err != nil {
			t.Fatalf("verify rotated token: %v", err)
		}
		if rec == nil {
			t.Fatal("rotated token does not verify against the store")
		}
	}
}

// TestConcurrentLeadDeduplication fires many identical inquiries at once and
// expects the unique index plus the re-select fallback to collapse them into
// a single lead.
func TestConcurrentLeadDeduplication(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pool := setupPool(t, ctx)

	brokerRepo := broker.NewRepository(pool)
	sessions := auth.NewRefreshTokenStore(pool)
	authSvc := auth.NewService(brokerRepo, sessions, auth.NewIssuer("stress-secret", ""))
	owner, _ := signupBroker(t, ctx, authSvc, "dedup@example.com")

	propertyRepo := property.NewRepository(pool)
	p, err := propertyRepo.Create(ctx, property.CreateParams{
		BrokerID:    owner.ID,
		Title:       "Stress house",
		Description: "A listing for racing inquiries against",
		Price:       250000,
		Tags:        []string{"stress"},
		Type:        property.TypeHouse,
		Transaction: property.TransactionSale,
		Location:    property.Location{Address: "Main St", City: "Springfield", State: "IL", Zip: "62701"},
	})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}

	leadSvc := lead.NewService(lead.NewRepository(pool), propertyRepo)
	email := "same-buyer@example.com"

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			_, err := leadSvc.Create(gctx, lead.CreateRequest{PropertyID: p.ID, Email: &email})
			if err != nil {
				return fmt.Errorf("create lead: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	var leadCount int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads WHERE broker_id = $1`, owner.ID).Scan(&leadCount); err != nil {
		t.Fatalf("count leads: %v", err)
	}
	if leadCount != 1 {
		t.Fatalf("expected 1 deduplicated lead, got %d", leadCount)
	}

	var linkCount int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM lead_properties lp JOIN leads l ON l.id = lp.lead_id WHERE l.broker_id = $1`, owner.ID).Scan(&linkCount); err != nil {
		t.Fatalf("count links: %v", err)
	}
	if linkCount != 1 {
		t.Fatalf("expected 1 property link, got %d", linkCount)
	}
}
