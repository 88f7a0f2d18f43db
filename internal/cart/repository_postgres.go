package cart

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mstore/shop-backend/internal/product"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// upsertCart implements the lazy get-or-create: a unique constraint on
// user_id plus an upsert, so concurrent first accesses never duplicate.
const upsertCartQuery = `
    INSERT INTO carts (user_id) VALUES ($1)
    ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
    RETURNING cart_id`

// lockProductQuery serializes the read-check-write stock sequence per
// product row, closing the oversell race between concurrent adds.
const lockProductQuery = `
    SELECT product_name, stock, price_cents FROM products
    WHERE product_id = $1 FOR UPDATE`

func (r *PostgresRepository) AddItem(userID, productID, qty int) (CartItem, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return CartItem{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var cartID int
	if err := tx.QueryRow(upsertCartQuery, userID).Scan(&cartID); err != nil {
		return CartItem{}, err
	}

	var name string
	var stock int
	var priceCents int64
	if err := tx.QueryRow(lockProductQuery, productID).Scan(&name, &stock, &priceCents); err != nil {
		if err == sql.ErrNoRows {
			return CartItem{}, product.ErrNotFound
		}
		return CartItem{}, err
	}

	if stock == 0 {
		return CartItem{}, ErrOutOfStock
	}
	if qty > stock {
		return CartItem{}, ErrInsufficientStock
	}

	item := CartItem{ProductID: productID, ProductName: name, PriceCents: priceCents}
	err = tx.QueryRow(
		`INSERT INTO cart_items (cart_id, product_id, quantity)
         VALUES ($1, $2, $3)
         ON CONFLICT (cart_id, product_id)
         DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
         RETURNING cart_item_id, quantity`,
		cartID, productID, qty,
	).Scan(&item.ID, &item.Quantity)
	if err != nil {
		return CartItem{}, err
	}
	item.TotalCents = priceCents * int64(item.Quantity)

	if _, err := tx.Exec(
		`UPDATE products SET stock = stock - $1, updated_at = now() WHERE product_id = $2`,
		qty, productID,
	); err != nil {
		return CartItem{}, err
	}

	if err := tx.Commit(); err != nil {
		return CartItem{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) RemoveItem(userID, productID, qty int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var cartID int
	if err := tx.QueryRow(upsertCartQuery, userID).Scan(&cartID); err != nil {
		return err
	}

	var name string
	var stock int
	var priceCents int64
	if err := tx.QueryRow(lockProductQuery, productID).Scan(&name, &stock, &priceCents); err != nil {
		if err == sql.ErrNoRows {
			return product.ErrNotFound
		}
		return err
	}

	var itemID, have int
	err = tx.QueryRow(
		`SELECT cart_item_id, quantity FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID,
	).Scan(&itemID, &have)
	if err == sql.ErrNoRows {
		return ErrItemNotInCart
	}
	if err != nil {
		return err
	}
	if qty > have {
		return ErrExcessRemoval
	}

	if qty == have {
		if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_item_id = $1`, itemID); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(
			`UPDATE cart_items SET quantity = quantity - $1, updated_at = now() WHERE cart_item_id = $2`,
			qty, itemID,
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(
		`UPDATE products SET stock = stock + $1, updated_at = now() WHERE product_id = $2`,
		qty, productID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) Get(userID int) (Cart, error) {
	var c Cart
	c.UserID = userID
	c.Items = make([]CartItem, 0)

	if err := r.db.QueryRow(upsertCartQuery, userID).Scan(&c.ID); err != nil {
		return Cart{}, err
	}

	rows, err := r.db.Query(
		`SELECT ci.cart_item_id, ci.product_id, p.product_name, p.price_cents, ci.quantity
         FROM cart_items ci
         JOIN products p ON p.product_id = ci.product_id
         WHERE ci.cart_id = $1
         ORDER BY ci.product_id`,
		c.ID,
	)
	if err != nil {
		return Cart{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var it CartItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.PriceCents, &it.Quantity); err != nil {
			return Cart{}, err
		}
		it.TotalCents = it.PriceCents * int64(it.Quantity)
		c.TotalCents += it.TotalCents
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

// Clear empties the cart and releases every reservation back to stock.
func (r *PostgresRepository) Clear(userID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var cartID int
	if err := tx.QueryRow(upsertCartQuery, userID).Scan(&cartID); err != nil {
		return err
	}

	if _, err := tx.Exec(
		`UPDATE products p SET stock = p.stock + ci.quantity, updated_at = now()
         FROM cart_items ci
         WHERE ci.cart_id = $1 AND ci.product_id = p.product_id`,
		cartID,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}

	return tx.Commit()
}

// ReleaseExpired restores stock held by cart items untouched since before
// olderThan and deletes those items, all in one transaction.
func (r *PostgresRepository) ReleaseExpired(olderThan time.Time) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE products p SET stock = p.stock + ci.quantity, updated_at = now()
         FROM cart_items ci
         WHERE ci.updated_at < $1 AND ci.product_id = p.product_id`,
		olderThan,
	); err != nil {
		return 0, err
	}

	res, err := tx.Exec(`DELETE FROM cart_items WHERE updated_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	released, _ := res.RowsAffected()
	return int(released), nil
}
