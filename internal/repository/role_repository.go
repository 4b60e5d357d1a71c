package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/symphozeon/backend/internal/model"
)

// ErrRoleNotFound is returned when a role cannot be found in the DB.
var ErrRoleNotFound = errors.New("role not found")

// ErrPermissionNotFound is returned when a permission cannot be
// found in the DB.
var ErrPermissionNotFound = errors.New("permission not found")

// RoleRepo provides access to the roles catalog and the
// role_permissions bundle table.  Roles are reusable across
// memberships; deleting a role detaches it from memberships rather
// than removing them.
type RoleRepo struct {
	db *sql.DB
}

// NewRoleRepo returns a new RoleRepo bound to the provided database.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

// Create inserts a role and populates its generated ID.
func (r *RoleRepo) Create(ctx context.Context, role *model.Role) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO roles (name) VALUES (?)`, role.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	role.ID = uint64(id)
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	return nil
}

// GetByID fetches a role with its permission bundle.
func (r *RoleRepo) GetByID(ctx context.Context, id uint64) (*model.Role, error) {
	var role model.Role
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM roles WHERE id = ?`, id).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.name FROM role_permissions rp JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = ? ORDER BY p.name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	role.Permissions = []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		role.Permissions = append(role.Permissions, n)
	}
	return &role, rows.Err()
}

// List returns all roles (names only, bundles not expanded) ordered
// by name.
func (r *RoleRepo) List(ctx context.Context) ([]*model.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Role{}
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		out = append(out, &role)
	}
	return out, rows.Err()
}

// AddPermission puts a permission into a role's bundle.  Adding one
// that is already present is a no-op.
func (r *RoleRepo) AddPermission(ctx context.Context, roleID, permissionID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)`,
		roleID, permissionID)
	if isDuplicate(err) {
		return nil
	}
	return err
}

// RemovePermission takes a permission out of a role's bundle.
func (r *RoleRepo) RemovePermission(ctx context.Context, roleID, permissionID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM role_permissions WHERE role_id = ? AND permission_id = ?`,
		roleID, permissionID)
	return err
}

// Delete removes a role.  Memberships that carried the role survive
// with role_id set to NULL, so they keep custom grants but lose the
// role-derived permissions.  Bundle rows go in the same transaction.
func (r *RoleRepo) Delete(ctx context.Context, id uint64) error {
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
		`UPDATE memberships SET role_id = NULL WHERE role_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM role_permissions WHERE role_id = ?`, id); err != nil {
		return err
	}
	var res sql.Result
	res, err = tx.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrRoleNotFound
	}
	return err
}
