package router

import (
	"github.com/labstack/echo/v4"

	"github.com/symphozeon/backend/internal/handler"
	"github.com/symphozeon/backend/internal/middleware"
)

// RegisterCatalogs registers the genre, role and permission catalog
// endpoints.  Reads are open to any authenticated account; mutations
// require the ADMIN account role.
func RegisterCatalogs(e *echo.Echo, h *handler.RoomHandler, jwtSecret string) {
	read := e.Group("/v1")
	read.Use(middleware.JWTAuth(jwtSecret))
	read.Use(middleware.RequireRole("USER", "ADMIN"))
	read.GET("/genres", h.ListGenres)
	read.GET("/roles", h.ListRoles)
	read.GET("/roles/:id", h.GetRole)
	read.GET("/permissions", h.ListPermissions)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.POST("/genres", h.CreateGenre)
	admin.PUT("/genres/:id", h.UpdateGenre)
	admin.DELETE("/genres/:id", h.DeleteGenre)
	admin.POST("/roles", h.CreateRole)
	admin.DELETE("/roles/:id", h.DeleteRole)
	admin.PUT("/roles/:id/permissions/:perm_id", h.AddRolePermission)
	admin.DELETE("/roles/:id/permissions/:perm_id", h.RemoveRolePermission)
	admin.POST("/permissions", h.CreatePermission)
	admin.DELETE("/permissions/:id", h.DeletePermission)
}
