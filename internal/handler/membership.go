package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/symphozeon/backend/internal/queue"
	"github.com/symphozeon/backend/internal/repository"
)

// kickPermission is the capability a member needs to remove another
// member from a room.  The creator can always kick.
const kickPermission = "kick_member"

// JoinRoom handles POST /v1/rooms/join.  The caller presents a room
// code; archived rooms cannot be joined.
func (h *RoomHandler) JoinRoom(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		RoomCode string `json:"room_code"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	code := strings.ToUpper(strings.TrimSpace(body.RoomCode))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_code is required"})
	}

	room, err := h.RoomRepo.GetByCode(c.Request().Context(), code)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if room.IsArchived {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is archived"})
	}

	m, err := h.MembershipRepo.Join(c.Request().Context(), uid, room.ID)
	if err != nil {
		if err == repository.ErrAlreadyMember {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already a member"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not join room"})
	}
	h.publishActivity(queue.RoomActivityEvent{RoomID: room.ID, RoomCode: room.RoomCode,
		Action: "member_joined", ActorID: uid})
	return c.JSON(http.StatusCreated, m)
}

// LeaveRoom handles DELETE /v1/rooms/:id/membership.
func (h *RoomHandler) LeaveRoom(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.MembershipRepo.Leave(c.Request().Context(), uid, id); err != nil {
		if err == repository.ErrMembershipNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not a member"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not leave room"})
	}
	h.publishActivity(queue.RoomActivityEvent{RoomID: id, Action: "member_left", ActorID: uid})
	return c.NoContent(http.StatusNoContent)
}

// ListMembers handles GET /v1/rooms/:id/members.
func (h *RoomHandler) ListMembers(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	items, err := h.MembershipRepo.ListByRoom(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetMyMembership handles GET /v1/rooms/:id/membership and returns
// the caller's membership with its resolved permission sets.
func (h *RoomHandler) GetMyMembership(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	m, err := h.MembershipRepo.Get(c.Request().Context(), uid, id)
	if err != nil {
		if err == repository.ErrMembershipNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not a member"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, m)
}

// SetMemberRole handles PUT /v1/rooms/:id/members/:user_id/role.
// Only the room creator assigns or clears membership roles; a null
// role_id in the body clears the assignment.
func (h *RoomHandler) SetMemberRole(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	targetID, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
	}
	var body struct {
		RoleID *uint64 `json:"role_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	room, err := h.RoomRepo.GetByID(c.Request().Context(), roomID)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if room.CreatorID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the creator may assign roles"})
	}
	if body.RoleID != nil {
		if _, err := h.RoleRepo.GetByID(c.Request().Context(), *body.RoleID); err != nil {
			if err == repository.ErrRoleNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
	}

	target, err := h.MembershipRepo.Get(c.Request().Context(), targetID, roomID)
	if err != nil {
		if err == repository.ErrMembershipNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "membership not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if err := h.MembershipRepo.SetRole(c.Request().Context(), target.ID, body.RoleID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.MembershipRepo.Get(c.Request().Context(), targetID, roomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// grantOrRevoke implements the two custom-grant endpoints; grant is
// true for POST and false for DELETE.
func (h *RoomHandler) grantOrRevoke(c echo.Context, grant bool) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	targetID, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
	}
	var body struct {
		Permission string `json:"permission"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Permission) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "permission is required"})
	}

	room, err := h.RoomRepo.GetByID(c.Request().Context(), roomID)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if room.CreatorID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the creator may manage grants"})
	}

	perm, err := h.PermissionRepo.GetByName(c.Request().Context(), strings.TrimSpace(body.Permission))
	if err != nil {
		if err == repository.ErrPermissionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "permission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	target, err := h.MembershipRepo.Get(c.Request().Context(), targetID, roomID)
	if err != nil {
		if err == repository.ErrMembershipNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "membership not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if grant {
		err = h.MembershipRepo.GrantPermission(c.Request().Context(), target.ID, perm.ID)
	} else {
		err = h.MembershipRepo.RevokePermission(c.Request().Context(), target.ID, perm.ID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.MembershipRepo.Get(c.Request().Context(), targetID, roomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// GrantMemberPermission handles POST /v1/rooms/:id/members/:user_id/permissions.
func (h *RoomHandler) GrantMemberPermission(c echo.Context) error {
	return h.grantOrRevoke(c, true)
}

// RevokeMemberPermission handles DELETE /v1/rooms/:id/members/:user_id/permissions.
func (h *RoomHandler) RevokeMemberPermission(c echo.Context) error {
	return h.grantOrRevoke(c, false)
}

// KickMember handles DELETE /v1/rooms/:id/members/:user_id.  The
// actor must be the room creator or hold the kick_member capability
// through their own membership — this is where the permission
// resolver gates an in-room action.
func (h *RoomHandler) KickMember(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	targetID, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
	}

	room, err := h.RoomRepo.GetByID(c.Request().Context(), roomID)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if room.CreatorID != uid {
		actor, err := h.MembershipRepo.Get(c.Request().Context(), uid, roomID)
		if err != nil {
			if err == repository.ErrMembershipNotFound {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		if !actor.HasPermission(kickPermission) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "missing kick_member permission"})
		}
	}

	if err := h.MembershipRepo.Leave(c.Request().Context(), targetID, roomID); err != nil {
		if err == repository.ErrMembershipNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "membership not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not kick member"})
	}
	h.publishActivity(queue.RoomActivityEvent{RoomID: roomID, RoomCode: room.RoomCode,
		Action: "member_left", ActorID: uid})
	return c.NoContent(http.StatusNoContent)
}
