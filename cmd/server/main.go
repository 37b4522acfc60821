package main // Entry point package

import (
	"context" // Context for the reaper lifecycle
	"log"     // Logging library
	"time"    // Durations for hold TTL and reaper interval

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/config"     // Environment config loader
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/database"   // MySQL connection
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/handler"    // HTTP handlers
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/middleware" // Cache and rate-limit middleware
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/queue"      // RabbitMQ event consumer
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/repository" // Data access layer
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/router"     // Route registration
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/service"    // Reservation and ticket services
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/worker"     // Expired-hold reaper
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env vars win
	cfg := config.Load()

	// Database
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; nil disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	// Repositories
	scheduleRepo := repository.NewScheduleRepo(db)
	holdRepo := repository.NewSeatHoldRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	ticketRepo := repository.NewTicketRepo(db)

	// Services
	holdTTL := time.Duration(cfg.HoldTTLMin) * time.Minute
	reservations := service.NewReservationService(db, scheduleRepo, holdRepo, bookingRepo, holdTTL)
	tickets := service.NewTicketService(db, ticketRepo, holdRepo, bookingRepo)

	// Queue consumer writes reservation events to the log file.
	queue.StartEventConsumer()

	// Expired-hold reaper. Runs until the process exits; releases are
	// conditional updates, so an extra instance elsewhere is harmless.
	reaper := worker.NewReaper(reservations, time.Duration(cfg.ReaperIntervalSec)*time.Second, service.PublishHoldReleased)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reaper.Run(ctx)

	// Handlers
	bookingHandler := handler.NewBookingHandler(reservations, bookingRepo)
	holdHandler := handler.NewHoldHandler(reservations)
	ticketHandler := handler.NewTicketHandler(tickets, ticketRepo)
	scheduleHandler := handler.NewScheduleHandler(scheduleRepo)

	// HTTP server
	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e, scheduleHandler, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterReservation(e, bookingHandler, holdHandler, ticketHandler, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, hold_ttl=%s)", addr, cfg.Env, holdTTL)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
