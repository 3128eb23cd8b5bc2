package menu

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

func (r *PostgresRepository) GetItem(ctx context.Context, restaurantID, itemID int64) (*Item, error) {
	var it Item

	err := r.db.QueryRow(ctx, `
		SELECT mi.id, mi.restaurant_id, COALESCE(mc.name, ''), mi.name,
		       mi.description, mi.price, mi.is_available
		FROM menu_items mi
		LEFT JOIN menu_categories mc ON mc.id = mi.category_id
		WHERE mi.id = $1 AND mi.restaurant_id = $2
	`, itemID, restaurantID).Scan(
		&it.ID,
		&it.RestaurantID,
		&it.Category,
		&it.Name,
		&it.Description,
		&it.Price,
		&it.Available,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	return &it, nil
}

func (r *PostgresRepository) ListAvailable(ctx context.Context, restaurantID int64) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT mi.id, mi.restaurant_id, COALESCE(mc.name, ''), mi.name,
		       mi.description, mi.price, mi.is_available
		FROM menu_items mi
		LEFT JOIN menu_categories mc ON mc.id = mi.category_id
		WHERE mi.restaurant_id = $1 AND mi.is_available = TRUE
		ORDER BY mc.name NULLS LAST, mi.name
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

func (r *PostgresRepository) ListAll(ctx context.Context, restaurantID int64) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT mi.id, mi.restaurant_id, COALESCE(mc.name, ''), mi.name,
		       mi.description, mi.price, mi.is_available
		FROM menu_items mi
		LEFT JOIN menu_categories mc ON mc.id = mi.category_id
		WHERE mi.restaurant_id = $1
		ORDER BY mi.id
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

func scanItems(rows pgx.Rows) ([]Item, error) {
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID,
			&it.RestaurantID,
			&it.Category,
			&it.Name,
			&it.Description,
			&it.Price,
			&it.Available,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// --------------------------------------------------
// Owner writes
// --------------------------------------------------

// categoryID resolves a category name, creating it on first use.
// An empty name means uncategorised.
func (r *PostgresRepository) categoryID(ctx context.Context, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO menu_categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&id)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *PostgresRepository) CreateItem(ctx context.Context, it *Item) error {
	catID, err := r.categoryID(ctx, it.Category)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO menu_items (restaurant_id, category_id, name, description, price, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, it.RestaurantID, catID, it.Name, it.Description, it.Price, it.Available).Scan(&it.ID)
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, it *Item) error {
	catID, err := r.categoryID(ctx, it.Category)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE menu_items
		SET category_id = $1, name = $2, description = $3, price = $4,
		    is_available = $5, updated_at = now()
		WHERE id = $6 AND restaurant_id = $7
	`, catID, it.Name, it.Description, it.Price, it.Available, it.ID, it.RestaurantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, restaurantID, itemID int64) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM menu_items WHERE id = $1 AND restaurant_id = $2
	`, itemID, restaurantID)
	if err != nil {
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != "23503" {
			return err
		}
		// Referenced by order_items: retire instead.
		tag, err = r.db.Exec(ctx, `
			UPDATE menu_items SET is_available = FALSE, updated_at = now()
			WHERE id = $1 AND restaurant_id = $2
		`, itemID, restaurantID)
		if err != nil {
			return err
		}
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
