package main

import (
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	log "github.com/sirupsen/logrus"

	"github.com/atshalahmedkhan/CodeOpoly-sub001/app/controllers"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/pkg/routes"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/cache"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/database"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/game"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/judge"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/logging"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/problems"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/queries"
	socket "github.com/atshalahmedkhan/CodeOpoly-sub001/platform/sockets"
)

func main() {
	logging.Init()

	db := database.PostgreSQLConnection()
	pool := cache.CreateRedisPool()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	static, err := problems.NewStatic(rng)
	if err != nil {
		log.WithError(err).Fatal("embedded problem catalog is broken")
	}
	if err := queries.SeedProblems(static.All(), db); err != nil {
		log.WithError(err).Warn("problem catalog seed failed, postgres picks may be empty")
	}

	snapshots := cache.NewSnapshotStore(pool)
	registry := game.NewRegistry(game.Deps{
		Judge:     judge.NewClient(),
		Catalog:   problems.NewPG(db, rng),
		Snapshots: snapshots,
	})

	// Revive matches that were in progress when the previous process died.
	if codes, err := snapshots.Codes(); err != nil {
		log.WithError(err).Warn("snapshot listing failed, sessions restore lazily on first command")
	} else if n := registry.RestoreAll(codes); n > 0 {
		log.WithField("sessions", n).Info("restored in-progress sessions")
	}

	app := fiber.New()

	app.Use(cors.New())
	routes.AuthRoutes(app)
	routes.GameRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: controllers.SigningKey(),
	}))
	app.Get("/user/cur", controllers.Cur)

	go socket.CreateSocketIOServer(registry, db)
	if err := app.Listen(":4101"); err != nil {
		log.WithError(err).Fatal("http server stopped")
	}
}
