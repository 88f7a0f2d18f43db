package order

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateFromCart(userID int) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var cartID int
	err = tx.QueryRow(`SELECT cart_id FROM carts WHERE user_id = $1`, userID).Scan(&cartID)
	if err == sql.ErrNoRows {
		return Order{}, ErrEmptyCart
	}
	if err != nil {
		return Order{}, err
	}

	// lock the product rows in a stable order so concurrent checkouts,
	// adds and cancels serialize instead of deadlocking
	rows, err := tx.Query(
		`SELECT ci.product_id, ci.quantity, p.product_name, p.stock, p.price_cents
         FROM cart_items ci
         JOIN products p ON p.product_id = ci.product_id
         WHERE ci.cart_id = $1
         ORDER BY ci.product_id
         FOR UPDATE OF p`,
		cartID,
	)
	if err != nil {
		return Order{}, err
	}

	o := Order{UserID: userID, CartID: cartID, Status: StatusPending}
	for rows.Next() {
		var it OrderItem
		var stock int
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.ProductName, &stock, &it.PriceCents); err != nil {
			rows.Close()
			return Order{}, err
		}
		// stock was already reserved at add-time; the re-check guards
		// against drift in the counters, not against overselling
		if stock < 0 {
			rows.Close()
			return Order{}, &StockError{ProductID: it.ProductID, ProductName: it.ProductName}
		}
		o.TotalCents += it.PriceCents * int64(it.Quantity)
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return Order{}, err
	}
	rows.Close()

	if len(o.Items) == 0 {
		return Order{}, ErrEmptyCart
	}

	err = tx.QueryRow(
		`INSERT INTO orders (user_id, cart_id, total_cents, status, created_at, updated_at)
         VALUES ($1, $2, $3, $4, now(), now())
         RETURNING order_id, created_at, updated_at`,
		userID, cartID, o.TotalCents, o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		err = tx.QueryRow(
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, price_cents)
             VALUES ($1, $2, $3, $4, $5)
             RETURNING order_item_id`,
			o.ID, o.Items[i].ProductID, o.Items[i].ProductName, o.Items[i].Quantity, o.Items[i].PriceCents,
		).Scan(&o.Items[i].ID)
		if err != nil {
			return Order{}, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	// the cart is emptied without restoring stock: the reservation made
	// at add-time is consumed by the order
	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return o, nil
}

const orderColumns = `order_id, user_id, COALESCE(cart_id, 0), total_cents, status, created_at, updated_at`

func (r *PostgresRepository) GetByID(orderID int) (Order, error) {
	var o Order
	err := r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID).
		Scan(&o.ID, &o.UserID, &o.CartID, &o.TotalCents, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}

	items, err := r.itemsFor([]int{o.ID})
	if err != nil {
		return Order{}, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = make([]OrderItem, 0)
	}
	return o, nil
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	rows, err := r.db.Query(
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY order_id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]int, 0)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CartID, &o.TotalCents, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Items = make([]OrderItem, 0)
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if its, ok := items[orders[i].ID]; ok {
			orders[i].Items = its
		}
	}
	return orders, nil
}

func (r *PostgresRepository) itemsFor(orderIDs []int) (map[int][]OrderItem, error) {
	rows, err := r.db.Query(
		`SELECT order_item_id, order_id, COALESCE(product_id, 0), product_name, quantity, price_cents
         FROM order_items
         WHERE order_id = ANY($1::int[])
         ORDER BY order_item_id`,
		pq.Array(orderIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int][]OrderItem)
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceCents); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CancelAndRestock(orderID int) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var o Order
	err = tx.QueryRow(
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1 FOR UPDATE`,
		orderID,
	).Scan(&o.ID, &o.UserID, &o.CartID, &o.TotalCents, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return Order{}, ErrInvalidTransition
	}

	// release the reservation captured in the item snapshots; products
	// deleted since the order was placed are skipped by the join
	if _, err := tx.Exec(
		`UPDATE products p SET stock = p.stock + oi.quantity, updated_at = now()
         FROM order_items oi
         WHERE oi.order_id = $1 AND oi.product_id = p.product_id`,
		orderID,
	); err != nil {
		return Order{}, err
	}

	err = tx.QueryRow(
		`UPDATE orders SET status = $1, updated_at = now() WHERE order_id = $2 RETURNING updated_at`,
		StatusCancelled, orderID,
	).Scan(&o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Status = StatusCancelled

	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	items, err := r.itemsFor([]int{orderID})
	if err != nil {
		return Order{}, err
	}
	o.Items = items[orderID]
	if o.Items == nil {
		o.Items = make([]OrderItem, 0)
	}
	return o, nil
}

// MarkPaid is a compare-and-swap on the status column: a concurrent cancel
// wins over a late payment success.
func (r *PostgresRepository) MarkPaid(orderID int) error {
	res, err := r.db.Exec(
		`UPDATE orders SET status = $1, updated_at = now() WHERE order_id = $2 AND status = $3`,
		StatusPaid, orderID, StatusPending,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}
