package product

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/andrevlopes/catalog-admin-backend/internal/listing"
)

func productColumns() []string {
	return []string{"id", "name", "slug", "price", "stock", "description", "status", "category_id", "name", "created_at", "updated_at"}
}

func TestPostgresListPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(1, "").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := sqlmock.NewRows(productColumns()).
		AddRow(1, "Notebook", "notebook", "1234.56", 3, nil, true, 1, "Electronics", "2026-08-30T10:00:00Z", "2026-08-30T10:00:00Z").
		AddRow(2, "Mouse", "mouse", "59.90", 10, "Wireless", true, 1, "Electronics", "2026-08-30T11:00:00Z", "2026-08-30T11:00:00Z")
	mock.ExpectQuery("FROM products p").
		WithArgs(1, "", listing.PerPage, 0).
		WillReturnRows(rows)

	repo := NewPostgresRepository(db)
	items, total, err := repo.ListPage(1, listing.Params{Page: 1}.Normalize())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("unexpected page: total=%d items=%d", total, len(items))
	}
	if items[0].Price != "1234.56" {
		t.Fatalf("price not read as text: %q", items[0].Price)
	}
	if items[1].Description == nil || *items[1].Description != "Wireless" {
		t.Fatalf("description not scanned: %+v", items[1])
	}
	if items[0].CategoryName == nil || *items[0].CategoryName != "Electronics" {
		t.Fatalf("category name not joined: %+v", items[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresSaveInsertsAndUpdates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Notebook", "notebook", "1234.56", 3, nil, true, 1, 1, "2026-08-30T10:00:00Z", "2026-08-30T10:00:00Z").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	mock.ExpectExec("UPDATE products").
		WithArgs("Notebook Pro", "notebook-pro", "2000.00", 2, nil, true, 1, "2026-08-30T12:00:00Z", 5, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresRepository(db)
	created, err := repo.Save(Product{
		Name: "Notebook", Slug: "notebook", Price: "1234.56", Stock: 3,
		Status: true, CategoryID: 1, UserID: 1,
		CreatedAt: "2026-08-30T10:00:00Z", UpdatedAt: "2026-08-30T10:00:00Z",
	})
	if err != nil || created.ID != 5 {
		t.Fatalf("insert failed: %+v %v", created, err)
	}

	_, err = repo.Save(Product{
		ID: 5, Name: "Notebook Pro", Slug: "notebook-pro", Price: "2000.00", Stock: 2,
		Status: true, CategoryID: 1, UserID: 1, UpdatedAt: "2026-08-30T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresAttachArchiveAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO archive_product").
		WithArgs(9, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("FROM archives a").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "extension", "archive", "path"}).
			AddRow(9, "front", "png", "3f1c.png", "/uploads/products/3f1c.png"))

	repo := NewPostgresRepository(db)
	if err := repo.AttachArchive(5, 9); err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	images, err := repo.ListArchives(5)
	if err != nil {
		t.Fatalf("list archives failed: %v", err)
	}
	if len(images) != 1 || images[0].Archive != "3f1c.png" {
		t.Fatalf("unexpected archives %+v", images)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresDeleteMissingProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM products").
		WithArgs(8, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresRepository(db)
	if err := repo.Delete(1, 8); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
