package archive

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertArchiveQuery = `
		INSERT INTO archives (filename, extension, archive, path)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	getArchiveByIDQuery = `
		SELECT id, filename, extension, archive, path
		FROM archives
		WHERE id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(a Archive) (Archive, error) {
	err := r.db.QueryRow(insertArchiveQuery, a.Filename, a.Extension, a.Archive, a.Path).Scan(&a.ID)
	if err != nil {
		return Archive{}, err
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(id int) (Archive, error) {
	var a Archive
	err := r.db.QueryRow(getArchiveByIDQuery, id).Scan(&a.ID, &a.Filename, &a.Extension, &a.Archive, &a.Path)
	if err != nil {
		if err == sql.ErrNoRows {
			return Archive{}, ErrNotFound
		}
		return Archive{}, err
	}
	return a, nil
}
