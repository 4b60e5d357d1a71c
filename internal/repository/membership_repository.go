package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/symphozeon/backend/internal/model"
)

// ErrAlreadyMember is returned when a join would violate the one
// membership per (user, room) invariant.
var ErrAlreadyMember = errors.New("already a member of this room")

// ErrMembershipNotFound is returned when no membership exists for
// the requested user and room.
var ErrMembershipNotFound = errors.New("membership not found")

// MembershipRepo provides data access to the memberships table and
// its permission grants.  It also maintains the derived
// rooms.member_count counter: join and leave adjust it inside the
// same transaction as the membership row itself.
type MembershipRepo struct {
	db *sql.DB
}

// NewMembershipRepo returns a new MembershipRepo bound to the
// provided database.
func NewMembershipRepo(db *sql.DB) *MembershipRepo {
	return &MembershipRepo{db: db}
}

// Join creates a membership binding the user to the room and bumps
// the room's member counter, atomically.  The UNIQUE (user_id,
// room_id) key turns a repeated join into ErrAlreadyMember with no
// counter drift.
func (r *MembershipRepo) Join(ctx context.Context, userID, roomID uint64) (*model.Membership, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		`INSERT INTO memberships (user_id, room_id) VALUES (?, ?)`, userID, roomID)
	if err != nil {
		if isDuplicate(err) {
			err = ErrAlreadyMember
		}
		return nil, err
	}
	var id int64
	if id, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE rooms SET member_count = member_count + 1 WHERE id = ?`, roomID); err != nil {
		return nil, err
	}
	m := &model.Membership{ID: uint64(id), UserID: userID, RoomID: roomID,
		RolePerms: []string{}, CustomPerms: []string{}}
	if err = tx.QueryRowContext(ctx,
		`SELECT created_at FROM memberships WHERE id = ?`, m.ID).Scan(&m.CreatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

// Leave removes the user's membership in the room and decrements the
// member counter, atomically.  ErrMembershipNotFound is returned
// when the user was not a member; the counter is left alone in that
// case.
func (r *MembershipRepo) Leave(ctx context.Context, userID, roomID uint64) error {
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

	// Grants hang off the membership row and have no cascading FK in
	// the join table direction, so clear them first.
	if _, err = tx.ExecContext(ctx,
		`DELETE mp FROM membership_permissions mp
		 JOIN memberships m ON m.id = mp.membership_id
		 WHERE m.user_id = ? AND m.room_id = ?`, userID, roomID); err != nil {
		return err
	}
	var res sql.Result
	res, err = tx.ExecContext(ctx,
		`DELETE FROM memberships WHERE user_id = ? AND room_id = ?`, userID, roomID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrMembershipNotFound
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE rooms SET member_count = member_count - 1 WHERE id = ? AND member_count > 0`, roomID)
	return err
}

// Get loads the membership of a user in a room with its role name,
// role-derived permission names and custom grants, ready for
// permission resolution.
func (r *MembershipRepo) Get(ctx context.Context, userID, roomID uint64) (*model.Membership, error) {
	var m model.Membership
	var roleID sql.NullInt64
	var roleName sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT m.id, m.user_id, m.room_id, m.role_id, r.name, m.created_at
		 FROM memberships m LEFT JOIN roles r ON r.id = m.role_id
		 WHERE m.user_id = ? AND m.room_id = ?`,
		userID, roomID,
	).Scan(&m.ID, &m.UserID, &m.RoomID, &roleID, &roleName, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	m.RolePerms = []string{}
	m.CustomPerms = []string{}
	if roleID.Valid {
		id := uint64(roleID.Int64)
		m.RoleID = &id
		m.RoleName = roleName.String
		if m.RolePerms, err = r.permNames(ctx,
			`SELECT p.name FROM role_permissions rp JOIN permissions p ON p.id = rp.permission_id
			 WHERE rp.role_id = ? ORDER BY p.name`, id); err != nil {
			return nil, err
		}
	}
	if m.CustomPerms, err = r.permNames(ctx,
		`SELECT p.name FROM membership_permissions mp JOIN permissions p ON p.id = mp.permission_id
		 WHERE mp.membership_id = ? ORDER BY p.name`, m.ID); err != nil {
		return nil, err
	}
	return &m, nil
}

// permNames collects permission names for one of the grant queries.
func (r *MembershipRepo) permNames(ctx context.Context, query string, id uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// ListByRoom returns every membership of a room joined with the
// member's username, oldest members first.
type Member struct {
	MembershipID uint64  `json:"membership_id"`
	UserID       uint64  `json:"user_id"`
	Username     string  `json:"username"`
	RoleID       *uint64 `json:"role_id"`
	RoleName     string  `json:"role_name"`
}

func (r *MembershipRepo) ListByRoom(ctx context.Context, roomID uint64) ([]Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.user_id, u.username, m.role_id, COALESCE(ro.name, '')
		 FROM memberships m
		 JOIN users u ON u.id = m.user_id
		 LEFT JOIN roles ro ON ro.id = m.role_id
		 WHERE m.room_id = ? ORDER BY m.created_at, m.id`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Member{}
	for rows.Next() {
		var m Member
		var roleID sql.NullInt64
		if err := rows.Scan(&m.MembershipID, &m.UserID, &m.Username, &roleID, &m.RoleName); err != nil {
			return nil, err
		}
		if roleID.Valid {
			id := uint64(roleID.Int64)
			m.RoleID = &id
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetRole assigns (or with a nil roleID clears) the role of a
// membership.  It returns ErrMembershipNotFound when no row matches.
func (r *MembershipRepo) SetRole(ctx context.Context, membershipID uint64, roleID *uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE memberships SET role_id = ? WHERE id = ?`, roleID, membershipID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing row from an unchanged one: setting
		// the same role twice matches zero affected rows on MySQL.
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM memberships WHERE id = ?)`, membershipID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrMembershipNotFound
		}
	}
	return nil
}

// GrantPermission attaches a custom permission grant to a
// membership.  Granting an already-held permission is a no-op;
// custom grants only widen, so repeating one changes nothing.
func (r *MembershipRepo) GrantPermission(ctx context.Context, membershipID, permissionID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO membership_permissions (membership_id, permission_id) VALUES (?, ?)`,
		membershipID, permissionID)
	if isDuplicate(err) {
		return nil
	}
	return err
}

// RevokePermission removes a custom permission grant from a
// membership.  Revoking a grant that was never made is a no-op.
func (r *MembershipRepo) RevokePermission(ctx context.Context, membershipID, permissionID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM membership_permissions WHERE membership_id = ? AND permission_id = ?`,
		membershipID, permissionID)
	return err
}

// HasPermission is the storage-backed permission resolver: custom
// grants are consulted first, then the role bundle.  It mirrors
// model.Membership.HasPermission for callers that have not loaded
// the full membership.  Pure read, no locking; a role change
// mid-flight is acceptable.
func (r *MembershipRepo) HasPermission(ctx context.Context, membershipID uint64, permissionName string) (bool, error) {
	var held bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM membership_permissions mp
		   JOIN permissions p ON p.id = mp.permission_id
		   WHERE mp.membership_id = ? AND p.name = ?)`,
		membershipID, permissionName,
	).Scan(&held)
	if err != nil || held {
		return held, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM memberships m
		   JOIN role_permissions rp ON rp.role_id = m.role_id
		   JOIN permissions p ON p.id = rp.permission_id
		   WHERE m.id = ? AND p.name = ?)`,
		membershipID, permissionName,
	).Scan(&held)
	return held, err
}
