package routes

import (
	"time"

	"github.com/carmarket-app/backend/internal/config"
	"github.com/carmarket-app/backend/internal/handlers"
	"github.com/carmarket-app/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	listingHandler *handlers.ListingHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Welcome to the Car Management API!")
	})

	// Uploaded images referenced by listing records
	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit
	users := api.Group("/users")
	users.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	users.Post("/register", authHandler.Register)
	users.Post("/login", authHandler.Login)
	users.Post("/refresh", authHandler.Refresh)
	users.Post("/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Listings — everything requires a verified bearer token.
	// /search is registered before /:id so it is matched first.
	cars := api.Group("/cars", middleware.JWTProtected(cfg))
	cars.Post("/", listingHandler.Create)
	cars.Get("/", listingHandler.List)
	cars.Get("/search", listingHandler.Search)
	cars.Get("/:id", listingHandler.Get)
	cars.Put("/:id", listingHandler.Update)
	cars.Delete("/:id", listingHandler.Delete)
}
