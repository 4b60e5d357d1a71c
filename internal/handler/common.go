package handler // http handlers for the listening-room API

import (
	"errors"  // sentinel value used in getUserID
	"strconv" // string-to-int conversion

	"github.com/labstack/echo/v4"

	"github.com/symphozeon/backend/internal/repository"
)

// RoomHandler bundles the repositories behind the room, membership,
// vote and chat endpoints.
type RoomHandler struct {
	RoomRepo       *repository.RoomRepo
	MembershipRepo *repository.MembershipRepo
	VoteRepo       *repository.VoteRepo
	MessageRepo    *repository.MessageRepo
	GenreRepo      *repository.GenreRepo
	RoleRepo       *repository.RoleRepo
	PermissionRepo *repository.PermissionRepo
}

// NewRoomHandler constructs a RoomHandler and panics if any
// dependency is nil; wiring bugs should fail at startup, not on the
// first request.
func NewRoomHandler(rooms *repository.RoomRepo, memberships *repository.MembershipRepo,
	votes *repository.VoteRepo, messages *repository.MessageRepo,
	genres *repository.GenreRepo, roles *repository.RoleRepo,
	permissions *repository.PermissionRepo) *RoomHandler {
	if rooms == nil || memberships == nil || votes == nil || messages == nil ||
		genres == nil || roles == nil || permissions == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{
		RoomRepo:       rooms,
		MembershipRepo: memberships,
		VoteRepo:       votes,
		MessageRepo:    messages,
		GenreRepo:      genres,
		RoleRepo:       roles,
		PermissionRepo: permissions,
	}
}

// getUserID extracts the user_id stored by the JWT middleware from
// echo.Context and converts it to uint64.  JSON numbers arrive as
// float64, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
