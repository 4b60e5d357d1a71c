package model

import "time"

// VibeVote records that a user voted to skip a song in a room.  At
// most one vote exists per (user, room, song) triple, enforced by a
// composite UNIQUE key on the `vibe_votes` table.  The song ID is an
// opaque string owned by the external track catalog.
type VibeVote struct {
	ID        uint64    `json:"id"`         // vibe_votes.id
	UserID    uint64    `json:"user_id"`    // vibe_votes.user_id
	RoomID    uint64    `json:"room_id"`    // vibe_votes.room_id
	SongID    string    `json:"song_id"`    // vibe_votes.song_id
	CreatedAt time.Time `json:"created_at"` // vibe_votes.created_at
}
