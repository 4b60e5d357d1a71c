package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockVoteRepo(t *testing.T) (*VoteRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewVoteRepo(db), mock
}

func TestVoteCast(t *testing.T) {
	repo, mock := newMockVoteRepo(t)

	cast := time.Date(2026, 3, 1, 21, 15, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO vibe_votes (user_id, room_id, song_id) VALUES (?, ?, ?)`)).
		WithArgs(uint64(1), uint64(5), "spotify:track:abc").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM vibe_votes WHERE id = ?`)).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(cast))

	v, err := repo.Cast(context.Background(), 1, 5, "spotify:track:abc")
	require.NoError(t, err)
	assert.Equal(t, uint64(11), v.ID)
	assert.Equal(t, "spotify:track:abc", v.SongID)
	assert.Equal(t, cast, v.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteCastDuplicate(t *testing.T) {
	repo, mock := newMockVoteRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO vibe_votes (user_id, room_id, song_id) VALUES (?, ?, ?)`)).
		WithArgs(uint64(1), uint64(5), "spotify:track:abc").
		WillReturnError(errors.New(dupErr1062))

	_, err := repo.Cast(context.Background(), 1, 5, "spotify:track:abc")
	assert.ErrorIs(t, err, ErrDuplicateVote)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteCountForSong(t *testing.T) {
	repo, mock := newMockVoteRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM vibe_votes WHERE room_id = ? AND song_id = ?`)).
		WithArgs(uint64(5), "spotify:track:abc").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.CountForSong(context.Background(), 5, "spotify:track:abc")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteCountsByRoomOrdered(t *testing.T) {
	repo, mock := newMockVoteRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT song_id, COUNT(*) AS votes FROM vibe_votes`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"song_id", "votes"}).
			AddRow("song-b", 7).
			AddRow("song-a", 2))

	counts, err := repo.CountsByRoom(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, SongCount{SongID: "song-b", Votes: 7}, counts[0])
	assert.Equal(t, SongCount{SongID: "song-a", Votes: 2}, counts[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}
