package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/symphozeon/backend/internal/model"
)

// ErrDuplicateVote is returned when a user has already voted to skip
// the same song in the same room.  The composite UNIQUE key on
// vibe_votes (user_id, room_id, song_id) makes the check-and-insert
// atomic with respect to concurrent votes.
var ErrDuplicateVote = errors.New("vote already cast")

// VoteRepo provides data access to the vibe_votes table.  The vote
// ledger deliberately performs no membership check; whether voting
// requires active membership is a policy question for the calling
// layer.
type VoteRepo struct {
	db *sql.DB
}

// NewVoteRepo returns a new VoteRepo bound to the provided database.
func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

// Cast records a skip vote for the (user, room, song) triple.  A
// second vote for the same triple fails with ErrDuplicateVote and
// creates no new record; duplicates are an error, not a silent
// no-op, so clients can tell the two outcomes apart.
func (r *VoteRepo) Cast(ctx context.Context, userID, roomID uint64, songID string) (*model.VibeVote, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO vibe_votes (user_id, room_id, song_id) VALUES (?, ?, ?)`,
		userID, roomID, songID,
	)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateVote
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	v := &model.VibeVote{ID: uint64(id), UserID: userID, RoomID: roomID, SongID: songID}
	// Read the row back to pick up the DB-assigned timestamp.
	err = r.db.QueryRowContext(ctx,
		`SELECT created_at FROM vibe_votes WHERE id = ?`, v.ID,
	).Scan(&v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// CountForSong returns how many skip votes a song has accumulated in
// a room.  This is the signal a player frontend compares against its
// skip threshold.
func (r *VoteRepo) CountForSong(ctx context.Context, roomID uint64, songID string) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vibe_votes WHERE room_id = ? AND song_id = ?`,
		roomID, songID,
	).Scan(&n)
	return n, err
}

// SongCount pairs a song with its vote tally for a room.
type SongCount struct {
	SongID string `json:"song_id"`
	Votes  uint64 `json:"votes"`
}

// CountsByRoom returns the vote tally of every song voted on in a
// room, most-voted first.
func (r *VoteRepo) CountsByRoom(ctx context.Context, roomID uint64) ([]SongCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT song_id, COUNT(*) AS votes FROM vibe_votes
		 WHERE room_id = ? GROUP BY song_id ORDER BY votes DESC, song_id`,
		roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []SongCount{}
	for rows.Next() {
		var sc SongCount
		if err := rows.Scan(&sc.SongID, &sc.Votes); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
