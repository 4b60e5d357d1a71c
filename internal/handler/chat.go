package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/symphozeon/backend/internal/queue"
	"github.com/symphozeon/backend/internal/repository"
)

// PostMessage handles POST /v1/rooms/:id/messages.  The chat log is
// append-only; the timestamp is assigned by the database.
func (h *RoomHandler) PostMessage(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Body string `json:"body"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	text := strings.TrimSpace(body.Body)
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body is required"})
	}

	room, err := h.RoomRepo.GetByID(c.Request().Context(), roomID)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	msg, err := h.MessageRepo.Append(c.Request().Context(), roomID, uid, text)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not post message"})
	}

	h.publishActivity(queue.RoomActivityEvent{RoomID: roomID, RoomCode: room.RoomCode,
		Action: "chat_message", ActorID: uid, Detail: messageExcerpt(text, 80)})
	return c.JSON(http.StatusCreated, msg)
}

// messageExcerpt trims a chat body to at most max bytes for the
// activity event, backing up to a rune boundary so a multi-byte
// character is never cut in half.
func messageExcerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// ListMessages handles GET /v1/rooms/:id/messages, ordered by
// timestamp ascending.
func (h *RoomHandler) ListMessages(c echo.Context) error {
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	items, err := h.MessageRepo.ListByRoom(c.Request().Context(), roomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
