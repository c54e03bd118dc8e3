package lead

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestLeadDeduplication_Integration connects to a real PostgreSQL via
// DATABASE_URL and exercises the dedup SQL: partial unique indexes, the
// COALESCE enrichment and the idempotent property link.
func TestLeadDeduplication_Integration(t *testing.T) {
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

	var hasTables bool
	err = pool.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM information_schema.tables WHERE table_name = 'lead_properties'
	)`).Scan(&hasTables)
	if err != nil || !hasTables {
		t.Skip("database schema missing; apply the files under migrations/ first")
	}

	nonce := time.Now().UnixNano()

	var brokerID string
	err = pool.QueryRow(ctx, `
		INSERT INTO brokers (first_name, last_name, email, password_hash)
		VALUES ('Lena', 'Ortiz', $1, 'x')
		RETURNING id`,
		fmt.Sprintf("lena+%d@example.com", nonce)).Scan(&brokerID)
	if err != nil {
		t.Fatalf("seed broker: %v", err)
	}

	var propertyID string
	err = pool.QueryRow(ctx, `
		INSERT INTO properties (broker_id, title, description, price, type, transaction, location)
		VALUES ($1, 'Test listing', 'Integration listing', 100000, 'house', 'sale', '{"city":"Austin"}')
		RETURNING id`, brokerID).Scan(&propertyID)
	if err != nil {
		t.Fatalf("seed property: %v", err)
	}

	repo := NewRepository(pool)
	email := fmt.Sprintf("buyer+%d@example.com", nonce)
	phone := fmt.Sprintf("555-%d", nonce%10000000)

	created, err := repo.Create(ctx, brokerID, &email, nil)
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	// A second create for the same contact must resolve to the same row.
	again, err := repo.Create(ctx, brokerID, &email, nil)
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if again.ID != created.ID {
		t.Fatalf("expected dedup to reuse lead %s, got %s", created.ID, again.ID)
	}

	matched, err := repo.FindMatch(ctx, brokerID, &email, nil)
	if err != nil {
		t.Fatalf("find match: %v", err)
	}
	if matched.ID != created.ID {
		t.Fatalf("find match returned %s, want %s", matched.ID, created.ID)
	}

	// Enrichment fills the missing phone but never overwrites the email.
	otherEmail := "other@example.com"
	enriched, err := repo.EnrichContact(ctx, created.ID, &otherEmail, &phone)
	if err != nil {
		t.Fatalf("enrich contact: %v", err)
	}
	if enriched.Phone == nil || *enriched.Phone != phone {
		t.Fatalf("phone not filled: %v", enriched.Phone)
	}
	if enriched.Email == nil || *enriched.Email != email {
		t.Fatalf("email must not change, got %v", enriched.Email)
	}

	// Linking twice leaves a single row.
	if err := repo.LinkProperty(ctx, created.ID, propertyID); err != nil {
		t.Fatalf("link property: %v", err)
	}
	if err := repo.LinkProperty(ctx, created.ID, propertyID); err != nil {
		t.Fatalf("relink property: %v", err)
	}
	ids, err := repo.PropertyIDs(ctx, created.ID)
	if err != nil {
		t.Fatalf("property ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != propertyID {
		t.Fatalf("expected one linked property, got %v", ids)
	}

	summaries, err := repo.ListForBroker(ctx, brokerID, "buyer+")
	if err != nil {
		t.Fatalf("list for broker: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(summaries))
	}
	got := summaries[0]
	if got.PropertyCount != 1 || len(got.PropertyTitles) != 1 || got.PropertyTitles[0] != "Test listing" {
		t.Fatalf("unexpected summary aggregation: %+v", got)
	}

	// A search term matching nothing filters the lead out.
	none, err := repo.ListForBroker(ctx, brokerID, "no-such-contact")
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty filtered list, got %d", len(none))
	}
}
