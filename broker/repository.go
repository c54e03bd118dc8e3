package broker

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the requested broker does not exist.
	ErrNotFound = errors.New("broker: not found")
	// ErrDuplicateEmail signals that the email is already registered.
	ErrDuplicateEmail = errors.New("broker: email already exists")
)

// CreateParams contains write parameters for creating brokers.
type CreateParams struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	PasswordHash string
}

// EditParams carries the optional fields of a partial broker update.
// Nil fields keep their stored value.
type EditParams struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Phone        *string
	PasswordHash *string
}

// Repository handles data access for broker accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const brokerColumns = `id, first_name, last_name, email, phone, password_hash, role, admin, created_at, updated_at`

// Create inserts a new broker with a hashed password.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Broker, error) {
	insertSQL := `
		INSERT INTO brokers (first_name, last_name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + brokerColumns

	b, err := scanBroker(r.pool.QueryRow(ctx, insertSQL,
		params.FirstName, params.LastName, params.Email, params.Phone, params.PasswordHash, RoleBroker))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Broker{}, ErrDuplicateEmail
		}
		return Broker{}, fmt.Errorf("broker: create: %w", err)
	}

	return b, nil
}

// GetByID fetches a broker by its primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (Broker, error) {
	selectSQL := `SELECT ` + brokerColumns + ` FROM brokers WHERE id = $1`

	b, err := scanBroker(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Broker{}, ErrNotFound
		}
		return Broker{}, fmt.Errorf("broker: get by id: %w", err)
	}

	return b, nil
}

// GetByEmail fetches a broker by email address.
func (r *Repository) GetByEmail(ctx context.Context, email string) (Broker, error) {
	selectSQL := `SELECT ` + brokerColumns + ` FROM brokers WHERE email = $1`

	b, err := scanBroker(r.pool.QueryRow(ctx, selectSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Broker{}, ErrNotFound
		}
		return Broker{}, fmt.Errorf("broker: get by email: %w", err)
	}

	return b, nil
}

// Edit applies a partial update. Every value travels as a bound parameter;
// absent fields collapse to the stored value via COALESCE.
func (r *Repository) Edit(ctx context.Context, id string, params EditParams) (Broker, error) {
	updateSQL := `
		UPDATE brokers
		SET first_name    = COALESCE($2, first_name),
		    last_name     = COALESCE($3, last_name),
		    email         = COALESCE($4, email),
		    phone         = COALESCE($5, phone),
		    password_hash = COALESCE($6, password_hash),
		    updated_at    = NOW()
		WHERE id = $1
		RETURNING ` + brokerColumns

	b, err := scanBroker(r.pool.QueryRow(ctx, updateSQL,
		id, params.FirstName, params.LastName, params.Email, params.Phone, params.PasswordHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Broker{}, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Broker{}, ErrDuplicateEmail
		}
		return Broker{}, fmt.Errorf("broker: edit: %w", err)
	}

	return b, nil
}

// Exists reports whether a broker row exists for the id.
func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM brokers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("broker: exists: %w", err)
	}
	return exists, nil
}

func scanBroker(row pgx.Row) (Broker, error) {
	var b Broker
	err := row.Scan(
		&b.ID,
		&b.FirstName,
		&b.LastName,
		&b.Email,
		&b.Phone,
		&b.PasswordHash,
		&b.Role,
		&b.Admin,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return Broker{}, err
	}
	return b, nil
}
