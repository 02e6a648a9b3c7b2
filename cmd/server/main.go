package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"onlyfilms/internal/config"
	"onlyfilms/internal/database"
	"onlyfilms/internal/handler"
	"onlyfilms/internal/httperr"
	"onlyfilms/internal/middleware"
	"onlyfilms/internal/queue"
	"onlyfilms/internal/repository"
	"onlyfilms/internal/router"
	"onlyfilms/internal/service"
	"onlyfilms/internal/storage"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("ensure schema: %v", err)
	}
	cancel()

	store, err := storage.NewS3Client(cfg)
	if err != nil {
		log.Fatalf("object storage: %v", err)
	}

	filmRepo := repository.NewFilmRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	pub := service.NewPublisher(cfg.AMQPURL)
	if cfg.AMQPURL != "" {
		go queue.StartFilmActivityConsumer(cfg.AMQPURL)
	}

	fh := handler.NewFilmHandler(filmRepo, userRepo, pub)
	uh := handler.NewUserHandler(cfg, userRepo, tokenRepo)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.Handler
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), config.NewRedisClient()))

	router.Register(e, cfg, store, filmRepo, fh, uh)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
