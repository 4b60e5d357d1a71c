package main // server entry point

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/symphozeon/backend/internal/config"
	"github.com/symphozeon/backend/internal/database"
	"github.com/symphozeon/backend/internal/handler"
	"github.com/symphozeon/backend/internal/queue"
	"github.com/symphozeon/backend/internal/repository"
	"github.com/symphozeon/backend/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis backs rate limiting and the browse cache; nil means both
	// degrade to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: rate limiting and response cache disabled")
	}

	// Background consumer mirrors room-activity events into a log file.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	authH := handler.NewAuthHandler(cfg,
		repository.NewUserRepo(db), repository.NewTokenRepo(db))
	roomH := handler.NewRoomHandler(
		repository.NewRoomRepo(db),
		repository.NewMembershipRepo(db),
		repository.NewVoteRepo(db),
		repository.NewMessageRepo(db),
		repository.NewGenreRepo(db),
		repository.NewRoleRepo(db),
		repository.NewPermissionRepo(db),
	)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, roomH, config.LoadCacheConfig(), rdb)
	router.RegisterRooms(e, roomH, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)
	router.RegisterCatalogs(e, roomH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
