package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"coffeeshop/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type orderRow struct {
	ID          string  `db:"id"`
	Method      string  `db:"delivery_method"`
	Address     string  `db:"address"`
	Note        string  `db:"note"`
	Subtotal    float64 `db:"subtotal"`
	DeliveryFee float64 `db:"delivery_fee"`
	Discount    float64 `db:"discount"`
	Total       float64 `db:"total"`
	Status      string  `db:"status"`
	CreatedAt   string  `db:"created_at"`
}

// Create writes the order header and its lines in one transaction.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
	  INSERT INTO orders
	    (id, delivery_method, address, note, subtotal, delivery_fee, discount, total, status, created_at)
	  VALUES
	    (?,  ?,               ?,       ?,    ?,        ?,            ?,        ?,     ?,      ?)
	`, o.ID, string(o.Method), o.Address, o.Note, o.Subtotal, o.DeliveryFee, o.Discount, o.Total,
		o.Status, o.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	for i, l := range o.Lines {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO order_items(order_id, line_no, product_id, title, image, size, qty, price)
		  VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		`, o.ID, i+1, l.ProductID, l.Title, l.Image, l.Size, l.Quantity, l.Price); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Get returns sql.ErrNoRows when the order does not exist.
func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o orderRow
	if err := r.db.GetContext(ctx, &o, `
		SELECT id, delivery_method, COALESCE(address,'') AS address, COALESCE(note,'') AS note,
		       subtotal, delivery_fee, discount, total, status, created_at
		FROM orders
		WHERE id = ?
	`, id); err != nil {
		return domain.Order{}, err
	}

	lines := []domain.OrderLine{}
	if err := r.db.SelectContext(ctx, &lines, `
		SELECT product_id, title, COALESCE(image,'') AS image, size, qty, price
		FROM order_items
		WHERE order_id = ?
		ORDER BY line_no
	`, id); err != nil {
		return domain.Order{}, err
	}

	created, err := time.Parse(time.RFC3339Nano, o.CreatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{
		ID:        o.ID,
		Address:   o.Address,
		Note:      o.Note,
		Status:    o.Status,
		CreatedAt: created,
		Quote: domain.Quote{
			Method:      domain.DeliveryMethod(o.Method),
			Lines:       lines,
			Subtotal:    o.Subtotal,
			DeliveryFee: o.DeliveryFee,
			Discount:    o.Discount,
			Total:       o.Total,
		},
	}, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return err
}
