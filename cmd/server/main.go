package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/database"
	"github.com/iliyamo/user-account-service/internal/handler"
	"github.com/iliyamo/user-account-service/internal/middleware"
	"github.com/iliyamo/user-account-service/internal/queue"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/router"
	"github.com/iliyamo/user-account-service/internal/service"
	"github.com/iliyamo/user-account-service/internal/token"
	"github.com/iliyamo/user-account-service/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// The revocation store must be reachable, otherwise rotated refresh
	// tokens could replay. Refuse to start without it.
	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	privPEM, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	pubPEM, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	codec, err := token.NewCodec(privPEM, pubPEM)
	if err != nil {
		log.Fatalf("jwt keys: %v", err)
	}

	avatars, err := utils.NewAvatarUploader(cfg.S3Bucket, cfg.S3Region)
	if err != nil {
		// Image storage is optional; signup works without it.
		log.Printf("s3: avatar uploads disabled: %v", err)
		avatars = nil
	}

	users := repository.NewUserRepo(db)
	notes := repository.NewResetNotificationRepo(db)
	revoked := repository.NewRevocationStore(rdb)
	publisher := queue.NewPublisher(cfg.RabbitURL)

	authSvc := service.NewAuthService(users, codec, cfg.AccessTTL, cfg.RefreshTTL, cfg.BcryptCost)
	refreshSvc := service.NewRefreshService(users, revoked, codec, cfg.AccessTTL, cfg.RefreshTTL)
	resetSvc := service.NewResetService(users, notes, publisher, codec, cfg.ResetTTL, cfg.BcryptCost, cfg.LinkBase)
	userSvc := service.NewUserService(users, cfg.BcryptCost)

	go func() {
		if err := queue.StartResetConsumer(cfg.RabbitURL); err != nil {
			log.Printf("reset consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	rl := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, refreshSvc, resetSvc, avatars), rl)
	router.RegisterUsers(e, handler.NewUserHandler(userSvc), codec)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
