package model

// Permission is an atomic named capability such as "kick_member" or
// "control_playback".  Corresponds to a row in the `permissions`
// table.  Permissions are granted either through a role bundle or as
// custom grants on a single membership.
type Permission struct {
	ID   uint64 `json:"id"`   // permissions.id
	Name string `json:"name"` // permissions.name
}

// Role is a named, reusable bundle of permissions that can be
// assigned to room memberships.  Corresponds to a row in the `roles`
// table; the bundle itself lives in the `role_permissions` join
// table.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the role (e.g. "DJ").
//  Permissions – names of the permissions in the bundle.
type Role struct {
	ID          uint64   `json:"id"`          // roles.id
	Name        string   `json:"name"`        // roles.name
	Permissions []string `json:"permissions"` // joined from role_permissions
}
