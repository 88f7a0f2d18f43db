package cart

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mstore/shop-backend/internal/product"
)

func TestPostgresAddItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO carts").WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id"}).AddRow(7))
	mock.ExpectQuery("FROM products").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"product_name", "stock", "price_cents"}).
			AddRow("Collar", 5, int64(1000)))
	mock.ExpectQuery("INSERT INTO cart_items").WithArgs(7, 1, 3).
		WillReturnRows(sqlmock.NewRows([]string{"cart_item_id", "quantity"}).AddRow(11, 3))
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(3, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	item, err := repo.AddItem(42, 1, 3)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if item.ID != 11 || item.Quantity != 3 || item.TotalCents != 3000 {
		t.Fatalf("unexpected cart item %+v", item)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresAddItem_InsufficientStockRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO carts").WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id"}).AddRow(7))
	mock.ExpectQuery("FROM products").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"product_name", "stock", "price_cents"}).
			AddRow("Collar", 2, int64(1000)))
	mock.ExpectRollback()

	if _, err := repo.AddItem(42, 1, 3); err != ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresAddItem_UnknownProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO carts").WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id"}).AddRow(7))
	mock.ExpectQuery("FROM products").WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"product_name", "stock", "price_cents"}))
	mock.ExpectRollback()

	if _, err := repo.AddItem(42, 99, 1); err != product.ErrNotFound {
		t.Fatalf("expected product.ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRemoveItem_DeletesRowWhenEmptied(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO carts").WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id"}).AddRow(7))
	mock.ExpectQuery("FROM products").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"product_name", "stock", "price_cents"}).
			AddRow("Collar", 2, int64(1000)))
	mock.ExpectQuery("SELECT cart_item_id, quantity FROM cart_items").WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"cart_item_id", "quantity"}).AddRow(11, 3))
	mock.ExpectExec("DELETE FROM cart_items").WithArgs(11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products SET stock = stock \\+").WithArgs(3, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.RemoveItem(42, 1, 3); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO carts").WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"cart_id"}).AddRow(7))
	rows := sqlmock.NewRows([]string{"cart_item_id", "product_id", "product_name", "price_cents", "quantity"}).
		AddRow(11, 1, "Collar", int64(1000), 2).
		AddRow(12, 2, "Leash", int64(250), 4)
	mock.ExpectQuery("FROM cart_items ci").WithArgs(7).WillReturnRows(rows)

	c, err := repo.Get(42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if c.ID != 7 || len(c.Items) != 2 {
		t.Fatalf("unexpected cart %+v", c)
	}
	if c.TotalCents != 3000 {
		t.Fatalf("expected total 3000, got %d", c.TotalCents)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
