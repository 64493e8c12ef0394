package server

import (
	"github.com/gofiber/fiber/v2"

	"trendhire/internal/core/crawl"
	"trendhire/internal/core/discover"
	"trendhire/internal/core/job"
	"trendhire/internal/core/source"
	"trendhire/internal/health"
)

type Dependencies struct {
	Job      *job.Service
	Crawl    *crawl.Service
	Discover *discover.Service
	Sources  *source.Registry
	Health   map[string]health.Checker
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.Handler {
	healthHandler := health.NewHandler(d.Health)
	app.Get("/v1/health", health.Limiter(), healthHandler.HandleHealth)

	api := app.Group("/v1")

	crawlHandler := crawl.NewHandler(d.Job, d.Crawl)
	api.Post("/crawl", crawlHandler.HandleCreate)
	api.Get("/crawl/:jobId", crawlHandler.HandleGet)

	discoverHandler := discover.NewHandler(d.Discover)
	api.Get("/discover", discoverHandler.HandleGet)

	api.Get("/sources", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "sources": d.Sources.All()})
	})

	return healthHandler
}
