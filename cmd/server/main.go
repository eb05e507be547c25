package main // entry point

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/restobook/restaurant-table-reservation/internal/config"
	"github.com/restobook/restaurant-table-reservation/internal/database"
	"github.com/restobook/restaurant-table-reservation/internal/handler"
	"github.com/restobook/restaurant-table-reservation/internal/queue"
	"github.com/restobook/restaurant-table-reservation/internal/repository"
	"github.com/restobook/restaurant-table-reservation/internal/router"
)

func main() {
	// .env is optional; in containers configuration arrives as real env vars.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is not configured

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	tables := repository.NewTableRepo(db)
	slots := repository.NewTimeSlotRepo(db)
	availability := repository.NewAvailabilityRepo(db)
	assignments := repository.NewAssignmentRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	ownerH := handler.NewOwnerHandler(restaurants, tables, slots, assignments, cfg.SlotDurationMin)
	customerH := handler.NewCustomerHandler(restaurants, tables, slots, availability, assignments)
	publicH := handler.NewPublicHandler(restaurants, slots, availability)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, config.LoadCacheConfig(), rdb)
	router.RegisterOwner(e, ownerH, cfg.JWTSecret)
	router.RegisterCustomer(e, customerH, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	// Consume booking events in the background; the loop reconnects on
	// broker failures and never takes the API down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
