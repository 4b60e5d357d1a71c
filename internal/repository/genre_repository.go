package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/symphozeon/backend/internal/model"
)

// ErrGenreNotFound is returned when a genre cannot be found in the DB.
var ErrGenreNotFound = errors.New("genre not found")

// ErrGenreExists is returned when a genre with the same name already
// exists.
var ErrGenreExists = errors.New("genre already exists")

// GenreRepo provides access to the genres catalog.  Genres are a
// shared vocabulary maintained by admins and referenced by rooms
// through the room_genres join table.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo returns a new GenreRepo bound to the provided database.
func NewGenreRepo(db *sql.DB) *GenreRepo {
	return &GenreRepo{db: db}
}

// Create inserts a genre and populates its generated ID.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO genres (name) VALUES (?)`, g.Name)
	if err != nil {
		if isDuplicate(err) {
			return ErrGenreExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// GetByID fetches a genre by its ID.
func (r *GenreRepo) GetByID(ctx context.Context, id uint64) (*model.Genre, error) {
	var g model.Genre
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM genres WHERE id = ?`, id).Scan(&g.ID, &g.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	return &g, nil
}

// List returns all genres ordered by name.
func (r *GenreRepo) List(ctx context.Context) ([]*model.Genre, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

// UpdateName renames a genre.  ErrGenreNotFound when no row matches,
// ErrGenreExists when the new name collides.
func (r *GenreRepo) UpdateName(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE genres SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrGenreExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGenreNotFound
	}
	return nil
}

// Delete removes a genre and its room links in one transaction.
// Rooms that carried the genre simply lose the tag.
func (r *GenreRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM room_genres WHERE genre_id = ?`, id); err != nil {
		return err
	}
	var res sql.Result
	res, err = tx.ExecContext(ctx, `DELETE FROM genres WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrGenreNotFound
	}
	return err
}
