package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/symphozeon/backend/internal/config"
	"github.com/symphozeon/backend/internal/handler"
	"github.com/symphozeon/backend/internal/middleware"
)

// RegisterRooms registers every authenticated room endpoint: room
// CRUD and lifecycle, membership management, the vote ledger and the
// chat log.  Write endpoints additionally pass through the
// Redis-backed token bucket so one client cannot flood a room.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, jwtSecret string,
	rlCfg config.RateLimitConfig, rdb *redis.Client) {
	limit := middleware.NewTokenBucket(rlCfg, rdb)

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("USER", "ADMIN"))

	// Rooms.
	g.POST("/rooms", h.CreateRoom, limit)
	g.GET("/rooms/mine", h.ListMyRooms)
	g.GET("/rooms/:id", h.GetRoom)
	g.PUT("/rooms/:id", h.UpdateRoom, limit)

	// Creator-gated lifecycle.
	g.POST("/rooms/:id/archive", h.ArchiveRoom, limit)
	g.POST("/rooms/:id/activate", h.ActivateRoom, limit)
	g.POST("/rooms/:id/public", h.MakeRoomPublic, limit)
	g.POST("/rooms/:id/private", h.MakeRoomPrivate, limit)
	g.DELETE("/rooms/:id", h.DeleteRoom, limit)

	// Membership.
	g.POST("/rooms/join", h.JoinRoom, limit)
	g.DELETE("/rooms/:id/membership", h.LeaveRoom)
	g.GET("/rooms/:id/members", h.ListMembers)
	g.GET("/rooms/:id/membership", h.GetMyMembership)
	g.PUT("/rooms/:id/members/:user_id/role", h.SetMemberRole, limit)
	g.POST("/rooms/:id/members/:user_id/permissions", h.GrantMemberPermission, limit)
	g.DELETE("/rooms/:id/members/:user_id/permissions", h.RevokeMemberPermission, limit)
	g.DELETE("/rooms/:id/members/:user_id", h.KickMember, limit)

	// Votes.
	g.POST("/rooms/:id/votes", h.CastVote, limit)
	g.GET("/rooms/:id/votes", h.ListVoteCounts)

	// Chat.
	g.POST("/rooms/:id/messages", h.PostMessage, limit)
	g.GET("/rooms/:id/messages", h.ListMessages)
}
