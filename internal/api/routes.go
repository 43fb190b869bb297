package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/faithcheck/internal/middleware"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, handlers *Handlers) {
	api := app.Group("/api/v1")

	api.Get("/health", handlers.HealthCheck)
	api.Get("/sources", handlers.GetSources)
	api.Get("/feed", middleware.ValidateQueryParams[FeedQuery](), handlers.GetFeed)

	articles := api.Group("/articles")
	{
		articles.Post("/:id/verify", handlers.VerifyArticle)
		articles.Get("/:id/verification", handlers.GetVerification)
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
