package model

import "time"

// Room is a shareable listening session.  Every room belongs to
// exactly one creator who alone may archive, activate, change the
// visibility of or delete it.  Other users join via the short
// RoomCode and interact through memberships, votes and chat.
// This struct corresponds to a row in the `rooms` table.
//
// Fields:
//  ID           – primary key identifier.
//  CreatorID    – user ID of the room creator.
//  Name         – display name of the room.
//  IsPublic     – whether the room is listed in public browsing.
//  IsArchived   – whether the room has been archived by its creator.
//  ArchivedDate – when the room was archived; nil exactly when
//                 IsArchived is false.
//  RoomCode     – globally unique short alphanumeric join code.
//  MemberCount  – maintained count of current memberships.
//  CreatedAt    – timestamp when the room was created.
//  Genres       – names of the genres tagged on this room.
type Room struct {
	ID           uint64     `json:"id"`            // rooms.id
	CreatorID    uint64     `json:"creator_id"`    // rooms.creator_id
	Name         string     `json:"name"`          // rooms.name
	IsPublic     bool       `json:"is_public"`     // rooms.is_public
	IsArchived   bool       `json:"is_archived"`   // rooms.is_archived
	ArchivedDate *time.Time `json:"archived_date"` // rooms.archived_date (nullable)
	RoomCode     string     `json:"room_code"`     // rooms.room_code (unique)
	MemberCount  uint32     `json:"member_count"`  // rooms.member_count
	CreatedAt    time.Time  `json:"created_at"`    // rooms.created_at
	Genres       []string   `json:"genres"`        // joined from room_genres
}
