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

func newMockMembershipRepo(t *testing.T) (*MembershipRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMembershipRepo(db), mock
}

func TestMembershipJoinBumpsCounter(t *testing.T) {
	repo, mock := newMockMembershipRepo(t)

	joined := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO memberships (user_id, room_id) VALUES (?, ?)`)).
		WithArgs(uint64(1), uint64(5)).
		WillReturnResult(sqlmock.NewResult(30, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rooms SET member_count = member_count + 1 WHERE id = ?`)).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM memberships WHERE id = ?`)).
		WithArgs(uint64(30)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(joined))
	mock.ExpectCommit()

	m, err := repo.Join(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), m.ID)
	assert.Nil(t, m.RoleID)
	assert.Empty(t, m.RolePerms)
	assert.Empty(t, m.CustomPerms)
	assert.Equal(t, joined, m.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipJoinTwice(t *testing.T) {
	repo, mock := newMockMembershipRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO memberships (user_id, room_id) VALUES (?, ?)`)).
		WithArgs(uint64(1), uint64(5)).
		WillReturnError(errors.New(dupErr1062))
	// Counter untouched: the rollback covers the failed insert only.
	mock.ExpectRollback()

	_, err := repo.Join(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipLeave(t *testing.T) {
	repo, mock := newMockMembershipRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE mp FROM membership_permissions mp`)).
		WithArgs(uint64(1), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM memberships WHERE user_id = ? AND room_id = ?`)).
		WithArgs(uint64(1), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE rooms SET member_count = member_count - 1 WHERE id = ? AND member_count > 0`)).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Leave(context.Background(), 1, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipLeaveNotMember(t *testing.T) {
	repo, mock := newMockMembershipRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE mp FROM membership_permissions mp`)).
		WithArgs(uint64(1), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM memberships WHERE user_id = ? AND room_id = ?`)).
		WithArgs(uint64(1), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Leave(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipGetResolvesGrants(t *testing.T) {
	repo, mock := newMockMembershipRepo(t)

	joined := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT m.id, m.user_id, m.room_id, m.role_id, r.name, m.created_at`)).
		WithArgs(uint64(1), uint64(5)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "room_id", "role_id", "name", "created_at"}).
			AddRow(30, 1, 5, 3, "dj", joined))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT p.name FROM role_permissions rp`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("manage_queue").AddRow("skip_track"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT p.name FROM membership_permissions mp`)).
		WithArgs(uint64(30)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("kick_member"))

	m, err := repo.Get(context.Background(), 1, 5)
	require.NoError(t, err)
	require.NotNil(t, m.RoleID)
	assert.Equal(t, uint64(3), *m.RoleID)
	assert.Equal(t, "dj", m.RoleName)
	assert.Equal(t, []string{"manage_queue", "skip_track"}, m.RolePerms)
	assert.Equal(t, []string{"kick_member"}, m.CustomPerms)
	assert.True(t, m.HasPermission("skip_track"))
	assert.True(t, m.HasPermission("kick_member"))
	assert.False(t, m.HasPermission("mute_member"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipGetNotFound(t *testing.T) {
	repo, mock := newMockMembershipRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT m.id, m.user_id, m.room_id, m.role_id, r.name, m.created_at`)).
		WithArgs(uint64(1), uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipGrantPermissionIdempotent(t *testing.T) {
	repo, mock := newMockMembershipRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO membership_permissions (membership_id, permission_id) VALUES (?, ?)`)).
		WithArgs(uint64(30), uint64(7)).
		WillReturnError(errors.New(dupErr1062))

	assert.NoError(t, repo.GrantPermission(context.Background(), 30, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipHasPermissionCustomFirst(t *testing.T) {
	repo, mock := newMockMembershipRepo(t)

	// Custom grant hits: the role bundle is never queried.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM membership_permissions mp`)).
		WithArgs(uint64(30), "kick_member").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	held, err := repo.HasPermission(context.Background(), 30, "kick_member")
	require.NoError(t, err)
	assert.True(t, held)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipHasPermissionFallsBackToRole(t *testing.T) {
	repo, mock := newMockMembershipRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM membership_permissions mp`)).
		WithArgs(uint64(30), "skip_track").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM memberships m`)).
		WithArgs(uint64(30), "skip_track").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	held, err := repo.HasPermission(context.Background(), 30, "skip_track")
	require.NoError(t, err)
	assert.True(t, held)
	assert.NoError(t, mock.ExpectationsWereMet())
}
