package model

import "time"

// User represents a registered listener.  Users create rooms, join
// them through memberships, vote to skip tracks and post chat
// messages.  This struct corresponds to a row in the `users` table.
//
// Fields:
//  ID           – primary key identifier.
//  Username     – unique display handle.
//  Email        – unique login email.
//  PasswordHash – bcrypt hash of the password; never serialized.
//  Role         – account role (USER or ADMIN); ADMIN may manage the
//                 shared genre/role/permission catalogs.
//  CreatedAt    – timestamp when the account was created.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`         // users.id
	Username     string    `json:"username"`   // users.username
	Email        string    `json:"email"`      // users.email
	PasswordHash string    `json:"-"`          // users.password_hash
	Role         string    `json:"role"`       // users.role
	CreatedAt    time.Time `json:"created_at"` // users.created_at
	UpdatedAt    time.Time `json:"updated_at"` // users.updated_at
}
