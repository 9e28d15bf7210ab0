package category

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andrevlopes/catalog-admin-backend/internal/listing"
)

type PostgresRepository struct {
	db *sql.DB
}

// sortableColumns maps table-header keys to the columns the list may order by.
var sortableColumns = map[string]string{
	"name":       "c.name",
	"slug":       "c.slug",
	"status":     "c.status",
	"created_at": "c.created_at",
}

const (
	countCategoriesQuery = `
		SELECT COUNT(*)
		FROM categories c
		WHERE c.user_id = $1 AND ($2 = '' OR c.name ILIKE '%' || $2 || '%')
	`
	listCategoriesQuery = `
		SELECT c.id, c.name, c.slug, c.status, c.parent_id, p.name, c.created_at, c.updated_at
		FROM categories c
		LEFT JOIN categories p ON p.id = c.parent_id
		WHERE c.user_id = $1 AND ($2 = '' OR c.name ILIKE '%%' || $2 || '%%')
		%s
		LIMIT $3 OFFSET $4
	`
	getCategoryByIDQuery = `
		SELECT c.id, c.name, c.slug, c.status, c.parent_id, p.name, c.created_at, c.updated_at
		FROM categories c
		LEFT JOIN categories p ON p.id = c.parent_id
		WHERE c.id = $1 AND c.user_id = $2
	`
	categoryExistsQuery = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND user_id = $2)`
	slugExistsQuery     = `SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)`
	searchByNameQuery   = `
		SELECT id, name
		FROM categories
		WHERE user_id = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY name
		LIMIT $3
	`
	insertCategoryQuery = `
		INSERT INTO categories (name, slug, status, parent_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	updateCategoryQuery = `
		UPDATE categories
		SET name = $1,
			slug = $2,
			status = $3,
			parent_id = $4,
			updated_at = $5
		WHERE id = $6 AND user_id = $7
	`
	deleteCategoryQuery = `DELETE FROM categories WHERE id = $1 AND user_id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListPage(ownerID int, params listing.Params) ([]Category, int, error) {
	var total int
	if err := r.db.QueryRow(countCategoriesQuery, ownerID, params.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(listCategoriesQuery, params.OrderClause(sortableColumns, "c.id"))
	rows, err := r.db.Query(query, ownerID, params.Search, listing.PerPage, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepository) GetByID(ownerID, id int) (Category, error) {
	c, err := scanCategory(r.db.QueryRow(getCategoryByIDQuery, id, ownerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Category{}, ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}

func (r *PostgresRepository) ExistsForOwner(id, ownerID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(categoryExistsQuery, id, ownerID).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) SlugExists(slug string, excludeID *int) (bool, error) {
	exclude := 0
	if excludeID != nil {
		exclude = *excludeID
	}
	var exists bool
	err := r.db.QueryRow(slugExistsQuery, slug, exclude).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) SearchByName(ownerID int, term string, limit int) (map[int]string, error) {
	rows, err := r.db.Query(searchByNameQuery, ownerID, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int]string{}
	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Save(c Category) (Category, error) {
	if c.ID == 0 {
		err := r.db.QueryRow(insertCategoryQuery, c.Name, c.Slug, c.Status, c.ParentID, c.UserID, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
		if err != nil {
			return Category{}, mapUniqueViolation(err)
		}
		return c, nil
	}

	res, err := r.db.Exec(updateCategoryQuery, c.Name, c.Slug, c.Status, c.ParentID, c.UpdatedAt, c.ID, c.UserID)
	if err != nil {
		return Category{}, mapUniqueViolation(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Category{}, ErrNotFound
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ownerID, id int) error {
	res, err := r.db.Exec(deleteCategoryQuery, id, ownerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
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

func scanCategory(row rowScanner) (Category, error) {
	var (
		c          Category
		parentID   sql.NullInt64
		parentName sql.NullString
		createdAt  sql.NullString
		updatedAt  sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Status, &parentID, &parentName, &createdAt, &updatedAt)
	if err != nil {
		return Category{}, err
	}
	if parentID.Valid {
		id := int(parentID.Int64)
		c.ParentID = &id
	}
	if parentName.Valid {
		c.ParentName = &parentName.String
	}
	c.CreatedAt = createdAt.String
	c.UpdatedAt = updatedAt.String
	return c, nil
}
