package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symphozeon/backend/internal/repository"
)

func newMockRoomHandler(t *testing.T) (*RoomHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRoomHandler(
		repository.NewRoomRepo(db),
		repository.NewMembershipRepo(db),
		repository.NewVoteRepo(db),
		repository.NewMessageRepo(db),
		repository.NewGenreRepo(db),
		repository.NewRoleRepo(db),
		repository.NewPermissionRepo(db),
	), mock
}

func newBundleContext(method, id, permID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "perm_id")
	c.SetParamValues(id, permID)
	return c, rec
}

// decodeSingleJSON fails the test when the body holds anything beyond
// one JSON value, which would mean two handlers wrote to the response.
func decodeSingleJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	dec := json.NewDecoder(rec.Body)
	var body map[string]any
	require.NoError(t, dec.Decode(&body))
	assert.ErrorIs(t, dec.Decode(&map[string]any{}), io.EOF, "response carries more than one JSON body")
	return body
}

func TestAddRolePermissionInvalidRoleID(t *testing.T) {
	h, mock := newMockRoomHandler(t)
	c, rec := newBundleContext(http.MethodPut, "abc", "1")

	require.NoError(t, h.AddRolePermission(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeSingleJSON(t, rec)
	assert.Equal(t, "invalid id", body["error"])
	// No statement may reach the database on a malformed path.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRolePermissionInvalidPermissionID(t *testing.T) {
	h, mock := newMockRoomHandler(t)
	c, rec := newBundleContext(http.MethodPut, "3", "zzz")

	require.NoError(t, h.AddRolePermission(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeSingleJSON(t, rec)
	assert.Equal(t, "invalid permission id", body["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRolePermissionMissingRole(t *testing.T) {
	h, mock := newMockRoomHandler(t)
	c, rec := newBundleContext(http.MethodPut, "3", "1")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM roles WHERE id = ?`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	require.NoError(t, h.AddRolePermission(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeSingleJSON(t, rec)
	assert.Equal(t, "role not found", body["error"])
	// The bundle INSERT must never run for a role that does not exist.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveRolePermissionInvalidID(t *testing.T) {
	h, mock := newMockRoomHandler(t)
	c, rec := newBundleContext(http.MethodDelete, "abc", "1")

	require.NoError(t, h.RemoveRolePermission(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
