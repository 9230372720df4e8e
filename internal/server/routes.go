package server

import (
	"slotscout/internal/core/dispatch"
	"slotscout/internal/core/slot"
	"slotscout/internal/core/task"
	"slotscout/internal/health"
	"slotscout/internal/platform/postgres"
	"slotscout/internal/platform/redis"
	"slotscout/internal/venue"

	"github.com/gofiber/fiber/v2"
)

type Dependencies struct {
	Registry *venue.Registry
	Slots    *slot.Service
	Tasks    *task.Service
	Dispatch *dispatch.Service
	Redis    *redis.Service
	Postgres *postgres.Service
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.HealthHandler {
	healthHandler := health.NewHealthHandler(d.Redis, d.Postgres, d.Slots)
	app.Get("/health", health.HealthLimiter(), healthHandler.HandleHealth)

	slotHandler := slot.NewHandler(d.Slots, d.Redis)
	app.Get("/data", slotHandler.HandleGetData)
	app.Post("/clear_data", slotHandler.HandleClearData)

	taskHandler := task.NewHandler(d.Tasks)
	app.Get("/task_status/:id", taskHandler.HandleTaskStatus)
	app.Get("/scraping_durations", taskHandler.HandleScrapingDurations)

	dispatchHandler := dispatch.NewHandler(d.Dispatch, d.Registry)
	app.Post("/run_scraper", dispatchHandler.HandleRunScraper)
	app.Post("/refresh_data", dispatchHandler.HandleRefreshData)

	return healthHandler
}
