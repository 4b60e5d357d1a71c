package repository

import (
	"context"
	"database/sql"

	"github.com/symphozeon/backend/internal/model"
)

// MessageRepo provides access to the chat_messages table.  The chat
// log is append-only: rows are inserted with a server-assigned
// timestamp and never mutated afterwards.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo returns a new MessageRepo bound to the provided
// database.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append inserts a chat message and reads it back so the caller
// receives the DB-assigned ID and timestamp.
func (r *MessageRepo) Append(ctx context.Context, roomID, userID uint64, body string) (*model.ChatMessage, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (room_id, user_id, body) VALUES (?, ?, ?)`,
		roomID, userID, body)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	m := &model.ChatMessage{ID: uint64(id), RoomID: roomID, UserID: userID, Body: body}
	err = r.db.QueryRowContext(ctx,
		`SELECT cm.created_at, u.username FROM chat_messages cm
		 JOIN users u ON u.id = cm.user_id WHERE cm.id = ?`, m.ID,
	).Scan(&m.CreatedAt, &m.Username)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListByRoom returns a room's messages ordered by timestamp
// ascending, with the author's username joined in.  The id
// tie-breaker keeps messages created in the same second stable.
func (r *MessageRepo) ListByRoom(ctx context.Context, roomID uint64) ([]*model.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cm.id, cm.room_id, cm.user_id, u.username, cm.body, cm.created_at
		 FROM chat_messages cm
		 JOIN users u ON u.id = cm.user_id
		 WHERE cm.room_id = ? ORDER BY cm.created_at, cm.id`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.ChatMessage{}
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.UserID, &m.Username, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
