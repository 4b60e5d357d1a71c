package model

import "time"

// ChatMessage is one entry in a room's append-only chat log.
// Messages are never edited after creation and cascade-delete with
// their room or author.  Corresponds to a row in the
// `chat_messages` table.
type ChatMessage struct {
	ID        uint64    `json:"id"`         // chat_messages.id
	RoomID    uint64    `json:"room_id"`    // chat_messages.room_id
	UserID    uint64    `json:"user_id"`    // chat_messages.user_id
	Username  string    `json:"username"`   // joined from users.username
	Body      string    `json:"body"`       // chat_messages.body
	CreatedAt time.Time `json:"created_at"` // chat_messages.created_at
}
