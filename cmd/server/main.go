package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"                         // .env loading for local development
	"github.com/labstack/echo/v4"                      // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"    // built-in Echo middleware

	"github.com/iliyamo/blog-api/internal/config"
	"github.com/iliyamo/blog-api/internal/database"
	"github.com/iliyamo/blog-api/internal/handler"
	"github.com/iliyamo/blog-api/internal/httperr"
	"github.com/iliyamo/blog-api/internal/middleware"
	"github.com/iliyamo/blog-api/internal/repository"
	"github.com/iliyamo/blog-api/internal/router"
)

func main() {
	// Load .env if present; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	posts := repository.NewPostRepo(db)

	// Redis is optional; without it the cache middleware is a no-op.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	if cacheCfg.Enabled && rdb == nil {
		log.Print("cache enabled but redis unavailable; responses will not be cached")
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.Handler()
	// A panicking handler must surface as a plain 500, never as a dropped
	// connection.
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())

	gate := middleware.Auth(cfg.JWTSecret, users)
	cache := middleware.Cache(cacheCfg, rdb)
	inv := handler.NewCacheInvalidator(rdb, cacheCfg)

	router.RegisterRoutes(e)
	router.RegisterUsers(e, handler.NewUserHandler(cfg, users, inv), gate, cache)
	router.RegisterPosts(e, handler.NewPostHandler(posts, inv), gate, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
