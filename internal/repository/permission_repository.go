package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/symphozeon/backend/internal/model"
)

// PermissionRepo provides access to the permissions catalog.
// Permissions are atomic capability names referenced by role bundles
// and by custom membership grants.
type PermissionRepo struct {
	db *sql.DB
}

// NewPermissionRepo returns a new PermissionRepo bound to the
// provided database.
func NewPermissionRepo(db *sql.DB) *PermissionRepo {
	return &PermissionRepo{db: db}
}

// Create inserts a permission and populates its generated ID.
func (r *PermissionRepo) Create(ctx context.Context, p *model.Permission) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO permissions (name) VALUES (?)`, p.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a permission by its ID.
func (r *PermissionRepo) GetByID(ctx context.Context, id uint64) (*model.Permission, error) {
	var p model.Permission
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM permissions WHERE id = ?`, id).Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPermissionNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByName fetches a permission by its unique name.
func (r *PermissionRepo) GetByName(ctx context.Context, name string) (*model.Permission, error) {
	var p model.Permission
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM permissions WHERE name = ?`, name).Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPermissionNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns all permissions ordered by name.
func (r *PermissionRepo) List(ctx context.Context) ([]*model.Permission, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Permission{}
	for rows.Next() {
		var p model.Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Delete removes a permission together with every role-bundle entry
// and custom grant that referenced it, in one transaction.
func (r *PermissionRepo) Delete(ctx context.Context, id uint64) error {
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
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM role_permissions WHERE permission_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM membership_permissions WHERE permission_id = ?`, id); err != nil {
		return err
	}
	var res sql.Result
	res, err = tx.ExecContext(ctx, `DELETE FROM permissions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrPermissionNotFound
	}
	return err
}
