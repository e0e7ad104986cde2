package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/attendance-tracker/internal/config"
	"github.com/iliyamo/attendance-tracker/internal/database"
	"github.com/iliyamo/attendance-tracker/internal/handler"
	"github.com/iliyamo/attendance-tracker/internal/queue"
	"github.com/iliyamo/attendance-tracker/internal/repository"
	"github.com/iliyamo/attendance-tracker/internal/router"
	"github.com/iliyamo/attendance-tracker/internal/service"
)

func main() {
	_ = godotenv.Load() // optional .env; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables the token-version cache
	// fast path, login rate limiting and the location-listing cache.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; version cache, rate limit and listing cache disabled")
	}

	users := repository.NewUserRepo(db)
	locations := repository.NewLocationRepo(db)
	attendances := repository.NewAttendanceRepo(db)

	versions := service.NewTokenVersions(users, rdb, cfg.SessionTTL())

	ledger := service.NewLedger(locations, attendances, cfg.Timezone(), cfg.CutoffHour, cfg.CutoffMinute)
	ledger.Publish = queue.PublishAttendanceEvent

	// Background consumer turns attendance events into an audit log.
	go func() {
		if err := queue.StartAttendanceConsumer(); err != nil {
			log.Printf("attendance consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, users),
		Attendance: handler.NewAttendanceHandler(users, ledger),
		Locations:  handler.NewLocationHandler(locations),
	}, cfg, versions, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
