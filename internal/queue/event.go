// Package queue defines message payloads exchanged over the message broker.
package queue

// RoomActivityEvent is published whenever something observable
// happens in a room: a lifecycle transition, a member joining or
// leaving, a skip vote or a chat message.  It carries enough for
// downstream consumers to log, notify or feed analytics without
// querying the primary database.
type RoomActivityEvent struct {
	RoomID     uint64 `json:"room_id"`
	RoomCode   string `json:"room_code"`
	Action     string `json:"action"` // archived | activated | made_public | made_private | deleted | member_joined | member_left | vote_cast | chat_message
	ActorID    uint64 `json:"actor_id"`
	Detail     string `json:"detail,omitempty"` // song ID for votes, message excerpt for chat
	OccurredAt string `json:"occurred_at"`
}
