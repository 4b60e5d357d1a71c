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

	"github.com/symphozeon/backend/internal/model"
)

const dupErr1062 = "Error 1062 (23000): Duplicate entry"

func newMockRoomRepo(t *testing.T) (*RoomRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRoomRepo(db), mock
}

func TestRoomCreateAllocatesCode(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM rooms WHERE room_code = ?)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO rooms (creator_id, name, is_public, room_code) VALUES (?, ?, ?, ?)`)).
		WithArgs(uint64(1), "jazz corner", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO room_genres (room_id, genre_id) VALUES (?, ?)`)).
		WithArgs(uint64(7), uint64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_public, is_archived, archived_date, member_count, created_at FROM rooms WHERE id = ?`)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"is_public", "is_archived", "archived_date", "member_count", "created_at"}).
			AddRow(true, false, nil, 0, time.Now()))
	mock.ExpectCommit()

	room := &model.Room{CreatorID: 1, Name: "jazz corner", IsPublic: true}
	err := repo.Create(context.Background(), room, []uint64{3})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), room.ID)
	assert.Len(t, room.RoomCode, 8)
	assert.False(t, room.IsArchived)
	assert.Nil(t, room.ArchivedDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCreateRetriesOnCodeCollision(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	mock.ExpectBegin()
	// First candidate is already taken; the pre-filter catches it.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM rooms WHERE room_code = ?)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	// Second candidate passes the pre-filter but loses the insert
	// race, so the unique key fires and forces one more round.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM rooms WHERE room_code = ?)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO rooms (creator_id, name, is_public, room_code) VALUES (?, ?, ?, ?)`)).
		WillReturnError(errors.New(dupErr1062))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM rooms WHERE room_code = ?)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO rooms (creator_id, name, is_public, room_code) VALUES (?, ?, ?, ?)`)).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_public, is_archived, archived_date, member_count, created_at FROM rooms WHERE id = ?`)).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"is_public", "is_archived", "archived_date", "member_count", "created_at"}).
			AddRow(true, false, nil, 0, time.Now()))
	mock.ExpectCommit()

	room := &model.Room{CreatorID: 2, Name: "late night", IsPublic: true}
	err := repo.Create(context.Background(), room, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomArchiveByCreator(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT creator_id FROM rooms WHERE id = ? FOR UPDATE`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rooms SET is_archived = 1, archived_date = UTC_TIMESTAMP() WHERE id = ?`)).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Archive(context.Background(), 5, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomArchiveByNonCreatorForbidden(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT creator_id FROM rooms WHERE id = ? FOR UPDATE`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(1))
	// No UPDATE: the transaction rolls back without touching the row.
	mock.ExpectRollback()

	err := repo.Archive(context.Background(), 5, 42)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomArchiveMissingRoom(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT creator_id FROM rooms WHERE id = ? FOR UPDATE`)).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}))
	mock.ExpectRollback()

	err := repo.Archive(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomActivateClearsArchivedDate(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT creator_id FROM rooms WHERE id = ? FOR UPDATE`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rooms SET is_archived = 0, archived_date = NULL WHERE id = ?`)).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Activate(context.Background(), 5, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomUpdateReplacesGenres(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT creator_id FROM rooms WHERE id = ? FOR UPDATE`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rooms SET name = ? WHERE id = ?`)).
		WithArgs("renamed", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM room_genres WHERE room_id = ?`)).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO room_genres (room_id, genre_id) VALUES (?, ?)`)).
		WithArgs(uint64(5), uint64(9)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), 5, 1, "renamed", []uint64{9}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomUpdateByNonCreatorForbidden(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT creator_id FROM rooms WHERE id = ? FOR UPDATE`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), 5, 42, "renamed", nil)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomDeleteCascades(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT creator_id FROM rooms WHERE id = ? FOR UPDATE`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE mp FROM membership_permissions mp`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM memberships WHERE room_id = ?`)).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM vibe_votes WHERE room_id = ?`)).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM chat_messages WHERE room_id = ?`)).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM room_genres WHERE room_id = ?`)).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM rooms WHERE id = ?`)).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteByIDAndCreator(context.Background(), 5, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomDeleteByNonCreatorForbidden(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT creator_id FROM rooms WHERE id = ? FOR UPDATE`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.DeleteByIDAndCreator(context.Background(), 5, 42)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomGetByCode(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, creator_id, name, is_public, is_archived, archived_date, room_code, member_count, created_at FROM rooms WHERE room_code = ?`)).
		WithArgs("AB12CD34").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "creator_id", "name", "is_public", "is_archived", "archived_date", "room_code", "member_count", "created_at"}).
			AddRow(5, 1, "jazz corner", true, false, nil, "AB12CD34", 2, created))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT g.name FROM room_genres rg JOIN genres g ON g.id = rg.genre_id`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("jazz").AddRow("soul"))

	room, err := repo.GetByCode(context.Background(), "AB12CD34")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD34", room.RoomCode)
	assert.Equal(t, []string{"jazz", "soul"}, room.Genres)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, creator_id, name, is_public, is_archived, archived_date, room_code, member_count, created_at FROM rooms WHERE id = ?`)).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
