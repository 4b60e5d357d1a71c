package handler

// Lifecycle endpoints.  Every operation here is creator-gated: the
// repository compares the acting user against rooms.creator_id under
// a row lock and refuses with ErrForbidden otherwise.  In-room role
// permissions have no say over these endpoints.

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/symphozeon/backend/internal/queue"
	"github.com/symphozeon/backend/internal/repository"
	queue_publisher "github.com/symphozeon/backend/internal/service"
)

// lifecycleOp runs one creator-gated mutation, maps repository
// sentinels onto HTTP statuses and publishes a room-activity event
// on success.
func (h *RoomHandler) lifecycleOp(c echo.Context, action string,
	op func(ctx context.Context, roomID, actorID uint64) error) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	// Snapshot the code before a delete removes the row.
	var code string
	if room, err := h.RoomRepo.GetByID(c.Request().Context(), id); err == nil {
		code = room.RoomCode
	}
	if err := op(c.Request().Context(), id, uid); err != nil {
		switch err {
		case repository.ErrRoomNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the creator may do this"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	h.publishActivity(queue.RoomActivityEvent{RoomID: id, RoomCode: code, Action: action, ActorID: uid})

	if action == "deleted" {
		return c.NoContent(http.StatusNoContent)
	}
	room, err := h.RoomRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, room)
}

// publishActivity sends a room-activity event to the broker without
// blocking the request; losing an event is acceptable.
func (h *RoomHandler) publishActivity(ev queue.RoomActivityEvent) {
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishRoomActivity(ctx, ev)
	}()
}

// ArchiveRoom handles POST /v1/rooms/:id/archive.
func (h *RoomHandler) ArchiveRoom(c echo.Context) error {
	return h.lifecycleOp(c, "archived", h.RoomRepo.Archive)
}

// ActivateRoom handles POST /v1/rooms/:id/activate.
func (h *RoomHandler) ActivateRoom(c echo.Context) error {
	return h.lifecycleOp(c, "activated", h.RoomRepo.Activate)
}

// MakeRoomPublic handles POST /v1/rooms/:id/public.
func (h *RoomHandler) MakeRoomPublic(c echo.Context) error {
	return h.lifecycleOp(c, "made_public", func(ctx context.Context, roomID, actorID uint64) error {
		return h.RoomRepo.SetVisibility(ctx, roomID, actorID, true)
	})
}

// MakeRoomPrivate handles POST /v1/rooms/:id/private.
func (h *RoomHandler) MakeRoomPrivate(c echo.Context) error {
	return h.lifecycleOp(c, "made_private", func(ctx context.Context, roomID, actorID uint64) error {
		return h.RoomRepo.SetVisibility(ctx, roomID, actorID, false)
	})
}

// DeleteRoom handles DELETE /v1/rooms/:id and cascades to
// memberships, votes, messages and genre links.
func (h *RoomHandler) DeleteRoom(c echo.Context) error {
	return h.lifecycleOp(c, "deleted", h.RoomRepo.DeleteByIDAndCreator)
}
