package product

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "description", "category", "price", "image_url", "sizes", "created_at"}).
		AddRow(2, "Linen shirt", "", "shirts", 45.0, "/uploads/b.webp", []byte(`{M,L}`), "2025-02-01T00:00:00Z").
		AddRow(1, "Wool coat", "warm", "outerwear", 120.0, "/uploads/a.webp", []byte(`{S,M}`), "2025-01-01T00:00:00Z")
	mock.ExpectQuery(regexp.QuoteMeta(listProductsQuery)).WillReturnRows(rows)

	repo := NewPostgresRepository(db)
	products, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].ID != 2 || products[0].Name != "Linen shirt" {
		t.Fatalf("unexpected first product %+v", products[0])
	}
	if len(products[1].Sizes) != 2 || products[1].Sizes[0] != "S" {
		t.Fatalf("sizes not decoded: %+v", products[1].Sizes)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(getProductByIDQuery)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "category", "price", "image_url", "sizes", "created_at"}))

	repo := NewPostgresRepository(db)
	if _, err := repo.GetByID(42); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresCreateReturnsAssignedID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(insertProductQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	repo := NewPostgresRepository(db)
	created, err := repo.Create(Product{Name: "Denim jacket", Price: 80, Sizes: []string{"M"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 7 {
		t.Fatalf("expected id 7, got %d", created.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresUpdateMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(updateProductQuery)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresRepository(db)
	if _, err := repo.Update(42, Product{Name: "Ghost", Sizes: []string{"M"}}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresDeleteMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(deleteProductQuery)).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresRepository(db)
	if err := repo.Delete(42); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
