package lead

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the requested lead does not exist.
var ErrNotFound = errors.New("lead: not found")

const leadColumns = `id, broker_id, email, phone, created_at`

// Repository handles data access for leads and their property links.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindMatch looks up an existing lead for the broker by email or phone.
// A nil contact value never matches.
func (r *Repository) FindMatch(ctx context.Context, brokerID string, email, phone *string) (Lead, error) {
	matchSQL := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE broker_id = $1
		  AND ((email = $2 AND $2::text IS NOT NULL) OR (phone = $3 AND $3::text IS NOT NULL))
		LIMIT 1`

	l, err := scanLead(r.pool.QueryRow(ctx, matchSQL, brokerID, email, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, fmt.Errorf("lead: find match: %w", err)
	}
	return l, nil
}

// Create inserts a new lead. When a concurrent insert wins the unique race
// on broker plus contact, the existing row is returned instead.
func (r *Repository) Create(ctx context.Context, brokerID string, email, phone *string) (Lead, error) {
	insertSQL := `
		INSERT INTO leads (broker_id, email, phone)
		VALUES ($1, $2, $3)
		RETURNING ` + leadColumns

	l, err := scanLead(r.pool.QueryRow(ctx, insertSQL, brokerID, email, phone))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return r.FindMatch(ctx, brokerID, email, phone)
		}
		return Lead{}, fmt.Errorf("lead: create: %w", err)
	}
	return l, nil
}

// EnrichContact fills in whichever contact field the lead is still missing.
// Already-set fields are left untouched.
func (r *Repository) EnrichContact(ctx context.Context, id string, email, phone *string) (Lead, error) {
	enrichSQL := `
		UPDATE leads
		SET email = COALESCE(email, $2), phone = COALESCE(phone, $3)
		WHERE id = $1
		RETURNING ` + leadColumns

	l, err := scanLead(r.pool.QueryRow(ctx, enrichSQL, id, email, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, fmt.Errorf("lead: enrich contact: %w", err)
	}
	return l, nil
}

// LinkProperty attaches the lead to a listing. Linking the same pair twice
// is a no-op.
func (r *Repository) LinkProperty(ctx context.Context, leadID, propertyID string) error {
	linkSQL := `
		INSERT INTO lead_properties (lead_id, property_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := r.pool.Exec(ctx, linkSQL, leadID, propertyID); err != nil {
		return fmt.Errorf("lead: link property: %w", err)
	}
	return nil
}

// PropertyIDs fetches the listings linked to a lead, oldest link first.
func (r *Repository) PropertyIDs(ctx context.Context, leadID string) ([]string, error) {
	idsSQL := `SELECT property_id FROM lead_properties WHERE lead_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, idsSQL, leadID)
	if err != nil {
		return nil, fmt.Errorf("lead: property ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, 4)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("lead: scan property id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lead: iterate property ids: %w", err)
	}
	return ids, nil
}

// ListForBroker fetches a broker's leads with their linked listings, newest
// first. A non-empty search term narrows by email or phone substring.
func (r *Repository) ListForBroker(ctx context.Context, brokerID, search string) ([]Summary, error) {
	listSQL := `
		SELECT l.id, l.email, l.phone, l.created_at,
			COUNT(lp.property_id) AS property_count,
			COALESCE(array_agg(lp.property_id::text) FILTER (WHERE lp.property_id IS NOT NULL), '{}') AS property_ids,
			COALESCE(array_agg(p.title) FILTER (WHERE p.title IS NOT NULL), '{}') AS property_titles
		FROM leads l
		LEFT JOIN lead_properties lp ON lp.lead_id = l.id
		LEFT JOIN properties p ON p.id = lp.property_id
		WHERE l.broker_id = $1
		  AND ($2 = '' OR l.email ILIKE '%' || $2 || '%' OR l.phone ILIKE '%' || $2 || '%')
		GROUP BY l.id, l.email, l.phone, l.created_at
		ORDER BY l.created_at DESC
		LIMIT 500`

	rows, err := r.pool.Query(ctx, listSQL, brokerID, search)
	if err != nil {
		return nil, fmt.Errorf("lead: list for broker: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0, 16)
	for rows.Next() {
		var s Summary
		err := rows.Scan(&s.ID, &s.Email, &s.Phone, &s.CreatedAt, &s.PropertyCount, &s.PropertyIDs, &s.PropertyTitles)
		if err != nil {
			return nil, fmt.Errorf("lead: scan summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lead: iterate summaries: %w", err)
	}
	return out, nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.BrokerID, &l.Email, &l.Phone, &l.CreatedAt)
	if err != nil {
		return Lead{}, err
	}
	return l, nil
}
