package main

import (
	"database/sql"

	"go.uber.org/zap"
)

// ensureSchema creates the tables at startup. Ownership and cascade rules
// are explicit: carts and orders own their item rows, and deleting a
// product removes dependent cart and order item rows. Order totals are
// denormalized so history survives product deletion.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        user_id SERIAL PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        password TEXT NOT NULL,
        first_name TEXT NOT NULL DEFAULT '',
        last_name TEXT NOT NULL DEFAULT '',
        is_admin BOOLEAN NOT NULL DEFAULT false,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS products (
        product_id SERIAL PRIMARY KEY,
        user_id INT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
        product_name TEXT NOT NULL,
        product_desc TEXT NOT NULL DEFAULT '',
        stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
        price_cents BIGINT NOT NULL DEFAULT 0 CHECK (price_cents >= 0),
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS carts (
        cart_id SERIAL PRIMARY KEY,
        user_id INT NOT NULL UNIQUE REFERENCES users(user_id) ON DELETE CASCADE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS cart_items (
        cart_item_id SERIAL PRIMARY KEY,
        cart_id INT NOT NULL REFERENCES carts(cart_id) ON DELETE CASCADE,
        product_id INT NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
        quantity INT NOT NULL CHECK (quantity >= 1),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        UNIQUE (cart_id, product_id)
    )`,
	`CREATE TABLE IF NOT EXISTS orders (
        order_id SERIAL PRIMARY KEY,
        user_id INT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
        cart_id INT REFERENCES carts(cart_id) ON DELETE SET NULL,
        total_cents BIGINT NOT NULL CHECK (total_cents >= 0),
        status TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS order_items (
        order_item_id SERIAL PRIMARY KEY,
        order_id INT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
        product_id INT REFERENCES products(product_id) ON DELETE CASCADE,
        product_name TEXT NOT NULL,
        quantity INT NOT NULL CHECK (quantity >= 1),
        price_cents BIGINT NOT NULL CHECK (price_cents >= 0)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_cart_items_updated_at ON cart_items (updated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id)`,
}

func ensureSchema(db *sql.DB, log *zap.Logger) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatal("failed to ensure schema", zap.Error(err))
		}
	}
}
