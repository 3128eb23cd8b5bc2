package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type pgTx struct {
	tx pgx.Tx
}

func (r *PostgresRepository) WithTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO orders (
			customer_id,
			restaurant_id,
			total_amount,
			status,
			special_instructions,
			payment_screenshot_path
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`,
		o.CustomerID,
		o.RestaurantID,
		o.TotalAmount,
		string(o.Status),
		o.SpecialInstructions,
		o.PaymentScreenshotPath,
	).Scan(&o.ID, &o.CreatedAt)
}

func (t *pgTx) InsertItem(ctx context.Context, it *Item) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO order_items (order_id, menu_item_id, quantity, price, special_instructions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, it.OrderID, it.MenuItemID, it.Quantity, it.Price, it.SpecialInstructions).Scan(&it.ID)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Order, error) {
	var (
		o      Order
		status string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, customer_id, restaurant_id, total_amount, status,
		       special_instructions, payment_screenshot_path, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&o.ID,
		&o.CustomerID,
		&o.RestaurantID,
		&o.TotalAmount,
		&status,
		&o.SpecialInstructions,
		&o.PaymentScreenshotPath,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	o.Status = Status(status)

	rows, err := r.db.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.menu_item_id, mi.name, oi.quantity, oi.price, oi.special_instructions
		FROM order_items oi
		JOIN menu_items mi ON mi.id = oi.menu_item_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Quantity, &it.Price, &it.SpecialInstructions); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}

	return &o, rows.Err()
}

func (r *PostgresRepository) RecordOrphan(ctx context.Context, o Orphan) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payment_orphans (customer_id, restaurant_id, evidence_ref, reason)
		VALUES ($1, $2, $3, $4)
	`, o.CustomerID, o.RestaurantID, o.EvidenceRef, o.Reason)
	return err
}

// --------------------------------------------------
// Restaurant side
// --------------------------------------------------

func (r *PostgresRepository) ListByRestaurant(ctx context.Context, restaurantID int64, status Status, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, customer_id, restaurant_id, total_amount, status,
		       special_instructions, payment_screenshot_path, created_at
		FROM orders
		WHERE restaurant_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, restaurantID, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var (
			o  Order
			st string
		)
		if err := rows.Scan(
			&o.ID,
			&o.CustomerID,
			&o.RestaurantID,
			&o.TotalAmount,
			&st,
			&o.SpecialInstructions,
			&o.PaymentScreenshotPath,
			&o.CreatedAt,
		); err != nil {
			return nil, err
		}
		o.Status = Status(st)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, restaurantID, id int64, from, to Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $1, updated_at = now()
		WHERE id = $2 AND restaurant_id = $3 AND status = $4
	`, string(to), id, restaurantID, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1 AND restaurant_id = $2)
	`, id, restaurantID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusConflict
}

func (r *PostgresRepository) Stats(ctx context.Context, restaurantID int64) (Stats, error) {
	var st Stats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_amount) FILTER (WHERE status <> 'Cancelled'), 0),
		       COALESCE(AVG(total_amount) FILTER (WHERE status <> 'Cancelled'), 0)::BIGINT,
		       COUNT(*) FILTER (WHERE status IN ('Pending', 'Preparing'))
		FROM orders
		WHERE restaurant_id = $1
	`, restaurantID).Scan(&st.Orders, &st.Revenue, &st.AverageOrder, &st.Open)
	return st, err
}
