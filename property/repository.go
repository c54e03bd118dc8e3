package property

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the requested listing does not exist.
var ErrNotFound = errors.New("property: not found")

const propertyColumns = `id, broker_id, title, description, price, tags, bedrooms, bathrooms, parking, type, transaction, location, images, active, created_at, updated_at`

// Repository handles data access for listings.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new listing owned by the broker.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Property, error) {
	locJSON, err := json.Marshal(params.Location)
	if err != nil {
		return Property{}, fmt.Errorf("property: encode location: %w", err)
	}

	insertSQL := `
		INSERT INTO properties (broker_id, title, description, price, tags, bedrooms, bathrooms, parking, type, transaction, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb)
		RETURNING ` + propertyColumns

	p, err := scanProperty(r.pool.QueryRow(ctx, insertSQL,
		params.BrokerID,
		params.Title,
		params.Description,
		params.Price,
		params.Tags,
		params.Bedrooms,
		params.Bathrooms,
		params.Parking,
		params.Type,
		params.Transaction,
		locJSON,
	))
	if err != nil {
		return Property{}, fmt.Errorf("property: create: %w", err)
	}

	return p, nil
}

// List fetches up to limit listings, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Property, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	listSQL := `SELECT ` + propertyColumns + ` FROM properties ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, listSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("property: list: %w", err)
	}
	defer rows.Close()

	return collectProperties(rows)
}

// GetByID fetches a listing by its primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (Property, error) {
	selectSQL := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrNotFound
		}
		return Property{}, fmt.Errorf("property: get by id: %w", err)
	}

	return p, nil
}

// Edit applies a partial update. The stored location is read first and the
// supplied keys merged into it; the read and the update are separate
// statements, so a concurrent edit can interleave between them.
func (r *Repository) Edit(ctx context.Context, id string, params EditParams) (Property, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return Property{}, err
	}

	merged := mergeLocation(current.Location, params.Location)
	locJSON, err := json.Marshal(merged)
	if err != nil {
		return Property{}, fmt.Errorf("property: encode location: %w", err)
	}

	updateSQL := `
		UPDATE properties
		SET title       = COALESCE($2, title),
		    description = COALESCE($3, description),
		    price       = COALESCE($4, price),
		    tags        = COALESCE($5, tags),
		    location    = $6::jsonb,
		    updated_at  = NOW()
		WHERE id = $1
		RETURNING ` + propertyColumns

	p, err := scanProperty(r.pool.QueryRow(ctx, updateSQL,
		id, params.Title, params.Description, params.Price, params.Tags, locJSON))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrNotFound
		}
		return Property{}, fmt.Errorf("property: edit: %w", err)
	}

	return p, nil
}

// UpdateImages replaces the listing's image URL list.
func (r *Repository) UpdateImages(ctx context.Context, id string, images []string) (Property, error) {
	updateSQL := `
		UPDATE properties
		SET images = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + propertyColumns

	p, err := scanProperty(r.pool.QueryRow(ctx, updateSQL, id, images))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrNotFound
		}
		return Property{}, fmt.Errorf("property: update images: %w", err)
	}

	return p, nil
}

// SetActive flips the listing's visibility flag.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) (Property, error) {
	updateSQL := `
		UPDATE properties
		SET active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + propertyColumns

	p, err := scanProperty(r.pool.QueryRow(ctx, updateSQL, id, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrNotFound
		}
		return Property{}, fmt.Errorf("property: set active: %w", err)
	}

	return p, nil
}

// Delete removes the listing and returns the deleted row.
func (r *Repository) Delete(ctx context.Context, id string) (Property, error) {
	deleteSQL := `DELETE FROM properties WHERE id = $1 RETURNING ` + propertyColumns

	p, err := scanProperty(r.pool.QueryRow(ctx, deleteSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrNotFound
		}
		return Property{}, fmt.Errorf("property: delete: %w", err)
	}

	return p, nil
}

func mergeLocation(current Location, updates map[string]string) Location {
	for key, value := range updates {
		switch key {
		case "address":
			current.Address = value
		case "addressNumber":
			current.AddressNumber = value
		case "street":
			current.Street = value
		case "neighborhood":
			current.Neighborhood = value
		case "city":
			current.City = value
		case "state":
			current.State = value
		case "zip":
			current.Zip = value
		}
	}
	return current
}

func scanProperty(row pgx.Row) (Property, error) {
	var (
		p       Property
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
		return Property{}, err
	}

	if len(locJSON) > 0 {
		if err := json.Unmarshal(locJSON, &p.Location); err != nil {
			return Property{}, fmt.Errorf("property: decode location: %w", err)
		}
	}
	return p, nil
}

func collectProperties(rows pgx.Rows) ([]Property, error) {
	out := make([]Property, 0, 16)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("property: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("property: iterate: %w", err)
	}
	return out, nil
}
