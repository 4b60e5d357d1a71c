package model

import "time"

// Membership binds one user to one room.  A user has at most one
// membership per room (UNIQUE (user_id, room_id) in the
// `memberships` table).  A membership optionally carries a role and
// a set of custom permission grants; custom grants only ever widen
// the role's bundle, there is no deny-override.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – member user ID.
//  RoomID      – room the user belongs to.
//  RoleID      – assigned role, nil when the membership has none.
//               The schema detaches this reference (SET NULL) when
//               the role is deleted, so a membership outlives its
//               role but loses the role-derived permissions.
//  RoleName    – name of the assigned role, empty when RoleID is nil.
//  RolePerms   – permission names granted through the role bundle.
//  CustomPerms – permission names granted directly on this membership.
//  CreatedAt   – when the user joined the room.
type Membership struct {
	ID          uint64    `json:"id"`           // memberships.id
	UserID      uint64    `json:"user_id"`      // memberships.user_id
	RoomID      uint64    `json:"room_id"`      // memberships.room_id
	RoleID      *uint64   `json:"role_id"`      // memberships.role_id (nullable)
	RoleName    string    `json:"role_name"`    // joined from roles.name
	RolePerms   []string  `json:"role_perms"`   // joined from role_permissions
	CustomPerms []string  `json:"custom_perms"` // joined from membership_permissions
	CreatedAt   time.Time `json:"created_at"`   // memberships.created_at
}

// HasPermission reports whether the membership holds the named
// capability.  Custom grants are consulted first, then the role
// bundle; a membership with no role and no custom grants holds
// nothing.
func (m *Membership) HasPermission(name string) bool {
	for _, p := range m.CustomPerms {
		if p == name {
			return true
		}
	}
	if m.RoleID == nil {
		return false
	}
	for _, p := range m.RolePerms {
		if p == name {
			return true
		}
	}
	return false
}
