package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/symphozeon/backend/internal/queue"
	"github.com/symphozeon/backend/internal/repository"
)

// CastVote handles POST /v1/rooms/:id/votes.  The vote ledger only
// enforces the one-vote-per-user-per-song invariant; it does not
// require membership (that policy belongs to the caller, not the
// ledger).
func (h *RoomHandler) CastVote(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		SongID string `json:"song_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	songID := strings.TrimSpace(body.SongID)
	if songID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "song_id is required"})
	}

	room, err := h.RoomRepo.GetByID(c.Request().Context(), roomID)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	v, err := h.VoteRepo.Cast(c.Request().Context(), uid, roomID, songID)
	if err != nil {
		if err == repository.ErrDuplicateVote {
			return c.JSON(http.StatusConflict, echo.Map{"error": "vote already cast"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not cast vote"})
	}

	count, err := h.VoteRepo.CountForSong(c.Request().Context(), roomID, songID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	h.publishActivity(queue.RoomActivityEvent{RoomID: roomID, RoomCode: room.RoomCode,
		Action: "vote_cast", ActorID: uid, Detail: songID})
	return c.JSON(http.StatusCreated, echo.Map{"vote": v, "song_votes": count})
}

// ListVoteCounts handles GET /v1/rooms/:id/votes and returns each
// voted-on song with its tally, most-voted first.
func (h *RoomHandler) ListVoteCounts(c echo.Context) error {
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	items, err := h.VoteRepo.CountsByRoom(c.Request().Context(), roomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
