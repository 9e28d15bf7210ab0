package product

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andrevlopes/catalog-admin-backend/internal/archive"
	"github.com/andrevlopes/catalog-admin-backend/internal/listing"
)

type PostgresRepository struct {
	db *sql.DB
}

var sortableColumns = map[string]string{
	"name":       "p.name",
	"slug":       "p.slug",
	"price":      "p.price",
	"stock":      "p.stock",
	"status":     "p.status",
	"created_at": "p.created_at",
}

const (
	countProductsQuery = `
		SELECT COUNT(*)
		FROM products p
		WHERE p.user_id = $1 AND ($2 = '' OR p.name ILIKE '%' || $2 || '%')
	`
	listProductsQuery = `
		SELECT p.id, p.name, p.slug, p.price::text, p.stock, p.description, p.status, p.category_id, c.name, p.created_at, p.updated_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.user_id = $1 AND ($2 = '' OR p.name ILIKE '%%' || $2 || '%%')
		%s
		LIMIT $3 OFFSET $4
	`
	getProductByIDQuery = `
		SELECT p.id, p.name, p.slug, p.price::text, p.stock, p.description, p.status, p.category_id, c.name, p.created_at, p.updated_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1 AND p.user_id = $2
	`
	productSlugExistsQuery = `SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND id <> $2)`
	insertProductQuery     = `
		INSERT INTO products (name, slug, price, stock, description, status, category_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1,
			slug = $2,
			price = $3::numeric,
			stock = $4,
			description = $5,
			status = $6,
			category_id = $7,
			updated_at = $8
		WHERE id = $9 AND user_id = $10
	`
	deleteProductQuery = `DELETE FROM products WHERE id = $1 AND user_id = $2`
	attachArchiveQuery = `
		INSERT INTO archive_product (archive_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	listProductArchivesQuery = `
		SELECT a.id, a.filename, a.extension, a.archive, a.path
		FROM archives a
		JOIN archive_product ap ON ap.archive_id = a.id
		WHERE ap.product_id = $1
		ORDER BY a.id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListPage(ownerID int, params listing.Params) ([]Product, int, error) {
	var total int
	if err := r.db.QueryRow(countProductsQuery, ownerID, params.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(listProductsQuery, params.OrderClause(sortableColumns, "p.id"))
	rows, err := r.db.Query(query, ownerID, params.Search, listing.PerPage, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepository) GetByID(ownerID, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductByIDQuery, id, ownerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) SlugExists(slug string, excludeID *int) (bool, error) {
	exclude := 0
	if excludeID != nil {
		exclude = *excludeID
	}
	var exists bool
	err := r.db.QueryRow(productSlugExistsQuery, slug, exclude).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) Save(p Product) (Product, error) {
	if p.ID == 0 {
		err := r.db.QueryRow(insertProductQuery,
			p.Name, p.Slug, p.Price, p.Stock, p.Description, p.Status, p.CategoryID, p.UserID, p.CreatedAt, p.UpdatedAt,
		).Scan(&p.ID)
		if err != nil {
			return Product{}, mapUniqueViolation(err)
		}
		return p, nil
	}

	res, err := r.db.Exec(updateProductQuery,
		p.Name, p.Slug, p.Price, p.Stock, p.Description, p.Status, p.CategoryID, p.UpdatedAt, p.ID, p.UserID,
	)
	if err != nil {
		return Product{}, mapUniqueViolation(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ownerID, id int) error {
	res, err := r.db.Exec(deleteProductQuery, id, ownerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) AttachArchive(productID, archiveID int) error {
	_, err := r.db.Exec(attachArchiveQuery, archiveID, productID)
	return err
}

func (r *PostgresRepository) ListArchives(productID int) ([]archive.Archive, error) {
	rows, err := r.db.Query(listProductArchivesQuery, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]archive.Archive, 0)
	for rows.Next() {
		var a archive.Archive
		if err := rows.Scan(&a.ID, &a.Filename, &a.Extension, &a.Archive, &a.Path); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// mapUniqueViolation converts a Postgres unique-constraint rejection into
// ErrSlugTaken. Slug uniqueness is checked during validation, but a
// concurrent writer can still win the race; the constraint is the backstop.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlugTaken
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p            Product
		description  sql.NullString
		categoryName sql.NullString
		createdAt    sql.NullString
		updatedAt    sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Price, &p.Stock, &description, &p.Status, &p.CategoryID, &categoryName, &createdAt, &updatedAt)
	if err != nil {
		return Product{}, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	if categoryName.Valid {
		p.CategoryName = &categoryName.String
	}
	p.CreatedAt = createdAt.String
	p.UpdatedAt = updatedAt.String
	return p, nil
}
