package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"listingflow/property"
)

const resultColumns = `id, broker_id, title, description, price, tags, bedrooms, bathrooms, parking, type, transaction, location, images, active, created_at, updated_at`

// Repository runs search queries against the properties table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed search repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FullText runs a ranked full-text search over active listings, narrowed by
// the given filters. An empty result is not an error.
func (r *Repository) FullText(ctx context.Context, query string, filters Filters) ([]property.Property, error) {
	where := []string{
		"active",
		"to_tsvector('english', title || ' ' || description) @@ plainto_tsquery('english', $1)",
	}
	args := []any{query}

	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filters.Transaction != "" {
		add("transaction = $%d", filters.Transaction)
	}
	if filters.Type != "" {
		add("type = $%d", filters.Type)
	}
	if filters.MinPrice != nil {
		add("price >= $%d", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		add("price <= $%d", *filters.MaxPrice)
	}
	if filters.MinBedrooms != nil {
		add("bedrooms >= $%d", *filters.MinBedrooms)
	}
	if filters.MaxBedrooms != nil {
		add("bedrooms <= $%d", *filters.MaxBedrooms)
	}
	if filters.City != "" {
		add("location->>'city' ILIKE $%d", filters.City)
	}
	if filters.State != "" {
		add("location->>'state' ILIKE $%d", filters.State)
	}

	searchSQL := `
		SELECT ` + resultColumns + `,
			ts_rank(to_tsvector('english', title || ' ' || description), plainto_tsquery('english', $1)) AS rank
		FROM properties
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY rank DESC, created_at DESC
		LIMIT 100`

	rows, err := r.pool.Query(ctx, searchSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("search: full text: %w", err)
	}
	defer rows.Close()

	out := make([]property.Property, 0, 16)
	for rows.Next() {
		p, err := scanRankedResult(rows)
		if err != nil {
			return nil, fmt.Errorf("search: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search: iterate: %w", err)
	}
	return out, nil
}

// ByTags fetches active listings whose tags overlap the given set.
func (r *Repository) ByTags(ctx context.Context, tags []string) ([]property.Property, error) {
	tagsSQL := `
		SELECT ` + resultColumns + `
		FROM properties
		WHERE active AND tags && $1::text[]
		ORDER BY created_at DESC
		LIMIT 100`

	rows, err := r.pool.Query(ctx, tagsSQL, tags)
	if err != nil {
		return nil, fmt.Errorf("search: by tags: %w", err)
	}
	defer rows.Close()

	return collectResults(rows)
}

// ByDescription fetches active listings whose description contains the term,
// case insensitively.
func (r *Repository) ByDescription(ctx context.Context, term string) ([]property.Property, error) {
	descSQL := `
		SELECT ` + resultColumns + `
		FROM properties
		WHERE active AND description ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT 100`

	rows, err := r.pool.Query(ctx, descSQL, term)
	if err != nil {
		return nil, fmt.Errorf("search: by description: %w", err)
	}
	defer rows.Close()

	return collectResults(rows)
}

func scanResult(row pgx.Row) (property.Property, error) {
	var (
		p       property.Property
		locJSON []byte
	)
	err := row.Scan(
		&p.ID,
		&p.BrokerID,
		&p.Title,
		&p.Description,
		&p.Price,
		&p.Tags,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.Parking,
		&p.Type,
		&p.Transaction,
		&locJSON,
		&p.Images,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return property.Property{}, err
	}
	if len(locJSON) > 0 {
		if err := json.Unmarshal(locJSON, &p.Location); err != nil {
			return property.Property{}, fmt.Errorf("decode location: %w", err)
		}
	}
	return p, nil
}

func scanRankedResult(row pgx.Row) (property.Property, error) {
	var (
		p       property.Property
		locJSON []byte
		rank    float32
	)
	err := row.Scan(
		&p.ID,
		&p.BrokerID,
		&p.Title,
		&p.Description,
		&p.Price,
		&p.Tags,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.Parking,
		&p.Type,
		&p.Transaction,
		&locJSON,
		&p.Images,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
		&rank,
	)
	if err != nil {
		return property.Property{}, err
	}
	if len(locJSON) > 0 {
		if err := json.Unmarshal(locJSON, &p.Location); err != nil {
			return property.Property{}, fmt.Errorf("decode location: %w", err)
		}
	}
	return p, nil
}

func collectResults(rows pgx.Rows) ([]property.Property, error) {
	out := make([]property.Property, 0, 16)
	for rows.Next() {
		p, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("search: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search: iterate: %w", err)
	}
	return out, nil
}
