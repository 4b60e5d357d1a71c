package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/symphozeon/backend/internal/model"
	"github.com/symphozeon/backend/internal/repository"
)

// CreateRoom handles POST /v1/rooms.  The authenticated caller
// becomes the room's creator; a unique 8-character join code is
// allocated as part of the insert.
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name     string   `json:"name"`
		IsPublic *bool    `json:"is_public"`
		GenreIDs []uint64 `json:"genre_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	isPublic := true // rooms are public unless stated otherwise
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	room := &model.Room{CreatorID: uid, Name: name, IsPublic: isPublic}
	if err := h.RoomRepo.Create(c.Request().Context(), room, body.GenreIDs); err != nil {
		if err == repository.ErrCodeExhausted {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not allocate room code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create room"})
	}
	if room.Genres == nil {
		room.Genres = []string{}
	}
	return c.JSON(http.StatusCreated, room)
}

// UpdateRoom handles PUT /v1/rooms/:id.  Creator-only; the genre list
// in the body replaces the room's current tags.
func (h *RoomHandler) UpdateRoom(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name     string   `json:"name"`
		GenreIDs []uint64 `json:"genre_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if err := h.RoomRepo.Update(c.Request().Context(), id, uid, name, body.GenreIDs); err != nil {
		switch err {
		case repository.ErrRoomNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the creator may do this"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	room, err := h.RoomRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, room)
}

// ListPublicRooms handles GET /v1/rooms and returns public,
// non-archived rooms for browsing.  Sits behind the response cache.
func (h *RoomHandler) ListPublicRooms(c echo.Context) error {
	items, err := h.RoomRepo.ListPublic(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListMyRooms handles GET /v1/rooms/mine and returns every room the
// caller created, archived rooms included.
func (h *RoomHandler) ListMyRooms(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.RoomRepo.ListByCreator(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetRoom handles GET /v1/rooms/:id.
func (h *RoomHandler) GetRoom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	room, err := h.RoomRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, room)
}

// GetRoomByCode handles GET /v1/rooms/code/:code — the lookup a
// client performs when a user types in a shared join code.
func (h *RoomHandler) GetRoomByCode(c echo.Context) error {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid code"})
	}
	room, err := h.RoomRepo.GetByCode(c.Request().Context(), code)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, room)
}
