package handler

// Catalog endpoints for genres, roles and permissions.  These are
// shared vocabularies, so mutations sit behind RequireRole("ADMIN");
// reads are open to any authenticated user.

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/symphozeon/backend/internal/model"
	"github.com/symphozeon/backend/internal/repository"
)

func bindName(c echo.Context) (string, error) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return "", err
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	return name, nil
}

// CreateGenre handles POST /v1/genres.
func (h *RoomHandler) CreateGenre(c echo.Context) error {
	name, err := bindName(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	g := &model.Genre{Name: name}
	if err := h.GenreRepo.Create(c.Request().Context(), g); err != nil {
		if err == repository.ErrGenreExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create genre"})
	}
	return c.JSON(http.StatusCreated, g)
}

// ListGenres handles GET /v1/genres.
func (h *RoomHandler) ListGenres(c echo.Context) error {
	items, err := h.GenreRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateGenre handles PUT /v1/genres/:id.
func (h *RoomHandler) UpdateGenre(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	name, err := bindName(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if err := h.GenreRepo.UpdateName(c.Request().Context(), id, name); err != nil {
		switch err {
		case repository.ErrGenreNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		case repository.ErrGenreExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, model.Genre{ID: id, Name: name})
}

// DeleteGenre handles DELETE /v1/genres/:id.
func (h *RoomHandler) DeleteGenre(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.GenreRepo.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrGenreNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateRole handles POST /v1/roles.
func (h *RoomHandler) CreateRole(c echo.Context) error {
	name, err := bindName(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	role := &model.Role{Name: name}
	if err := h.RoleRepo.Create(c.Request().Context(), role); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create role"})
	}
	return c.JSON(http.StatusCreated, role)
}

// ListRoles handles GET /v1/roles.
func (h *RoomHandler) ListRoles(c echo.Context) error {
	items, err := h.RoleRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetRole handles GET /v1/roles/:id, expanding the permission bundle.
func (h *RoomHandler) GetRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	role, err := h.RoleRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrRoleNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, role)
}

// DeleteRole handles DELETE /v1/roles/:id.  Memberships holding the
// role keep their custom grants but fall back to no role.
func (h *RoomHandler) DeleteRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.RoleRepo.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrRoleNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// rolePermissionIDs pulls the role and permission IDs out of a
// /v1/roles/:id/permissions/:perm_id path and checks both rows
// exist.  On failure it writes the error response itself and returns
// ok=false; callers must stop without touching the bundle.
func (h *RoomHandler) rolePermissionIDs(c echo.Context) (roleID, permID uint64, ok bool) {
	roleID, err := pathID(c, "id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return 0, 0, false
	}
	permID, err = pathID(c, "perm_id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission id"})
		return 0, 0, false
	}
	if _, err := h.RoleRepo.GetByID(c.Request().Context(), roleID); err != nil {
		if err == repository.ErrRoleNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		return 0, 0, false
	}
	if _, err := h.PermissionRepo.GetByID(c.Request().Context(), permID); err != nil {
		if err == repository.ErrPermissionNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "permission not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		return 0, 0, false
	}
	return roleID, permID, true
}

// AddRolePermission handles PUT /v1/roles/:id/permissions/:perm_id.
func (h *RoomHandler) AddRolePermission(c echo.Context) error {
	roleID, permID, ok := h.rolePermissionIDs(c)
	if !ok {
		return nil
	}
	if err := h.RoleRepo.AddPermission(c.Request().Context(), roleID, permID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	role, err := h.RoleRepo.GetByID(c.Request().Context(), roleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, role)
}

// RemoveRolePermission handles DELETE /v1/roles/:id/permissions/:perm_id.
func (h *RoomHandler) RemoveRolePermission(c echo.Context) error {
	roleID, permID, ok := h.rolePermissionIDs(c)
	if !ok {
		return nil
	}
	if err := h.RoleRepo.RemovePermission(c.Request().Context(), roleID, permID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CreatePermission handles POST /v1/permissions.
func (h *RoomHandler) CreatePermission(c echo.Context) error {
	name, err := bindName(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	p := &model.Permission{Name: name}
	if err := h.PermissionRepo.Create(c.Request().Context(), p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create permission"})
	}
	return c.JSON(http.StatusCreated, p)
}

// ListPermissions handles GET /v1/permissions.
func (h *RoomHandler) ListPermissions(c echo.Context) error {
	items, err := h.PermissionRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// DeletePermission handles DELETE /v1/permissions/:id and scrubs it
// from role bundles and custom grants.
func (h *RoomHandler) DeletePermission(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.PermissionRepo.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrPermissionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "permission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.NoContent(http.StatusNoContent)
}
