package restaurant

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// Create a new restaurant
// --------------------------------------------------
func (r *PostgresRepository) Create(ctx context.Context, rest *Restaurant) error {
	query := `
		INSERT INTO restaurants (
			owner_id,
			name,
			cuisine_type,
			address,
			phone,
			description
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		rest.OwnerID,
		rest.Name,
		rest.CuisineType,
		rest.Address,
		rest.Phone,
		rest.Description,
	).Scan(&rest.ID, &rest.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

// --------------------------------------------------
// Update profile
// --------------------------------------------------
func (r *PostgresRepository) Update(ctx context.Context, rest *Restaurant) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE restaurants
		SET name = $1, cuisine_type = $2, address = $3, phone = $4, description = $5
		WHERE id = $6 AND owner_id = $7
	`,
		rest.Name,
		rest.CuisineType,
		rest.Address,
		rest.Phone,
		rest.Description,
		rest.ID,
		rest.OwnerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// Restaurant owned by a user
// --------------------------------------------------
func (r *PostgresRepository) FindByOwner(ctx context.Context, ownerID string) (*Restaurant, error) {
	query := `
		SELECT
			id,
			owner_id,
			name,
			cuisine_type,
			address,
			phone,
			description,
			created_at
		FROM restaurants
		WHERE owner_id = $1
	`

	var rest Restaurant
	err := r.db.QueryRow(ctx, query, ownerID).Scan(
		&rest.ID,
		&rest.OwnerID,
		&rest.Name,
		&rest.CuisineType,
		&rest.Address,
		&rest.Phone,
		&rest.Description,
		&rest.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rest, nil
}

// --------------------------------------------------
// Public directory
// --------------------------------------------------
func (r *PostgresRepository) List(ctx context.Context) ([]Restaurant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, name, cuisine_type, address, phone, description, created_at
		FROM restaurants
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Restaurant
	for rows.Next() {
		var rest Restaurant
		if err := rows.Scan(
			&rest.ID,
			&rest.OwnerID,
			&rest.Name,
			&rest.CuisineType,
			&rest.Address,
			&rest.Phone,
			&rest.Description,
			&rest.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	return out, rows.Err()
}
