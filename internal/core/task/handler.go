package task

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	tasks *Service
}

func NewHandler(tasks *Service) *Handler {
	return &Handler{tasks: tasks}
}

// HandleTaskStatus serves GET /task_status/:id.
func (h *Handler) HandleTaskStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	j, err := h.tasks.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "not_found", "message": "no task with id " + id,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_error", "message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"task":      j,
		"completed": IsTerminal(j.State),
	})
}

// HandleScrapingDurations serves GET /scraping_durations: the latest
// successful aggregate duration for each city x {today, tomorrow} quadrant.
func (h *Handler) HandleScrapingDurations(c *fiber.Ctx) error {
	quadrants := map[string]string{
		"nyc_today":       "all_nyc_today%",
		"nyc_tomorrow":    "all_nyc_tomorrow%",
		"london_today":    "all_london_today%",
		"london_tomorrow": "all_london_tomorrow%",
	}

	out := fiber.Map{}
	for name, pattern := range quadrants {
		j, err := h.tasks.LatestOf(c.Context(), pattern, StateSubmitted, StateSuccess)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				out[name] = nil
				continue
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal_error", "message": err.Error(),
			})
		}
		out[name] = fiber.Map{
			"task_id":          j.TaskID,
			"duration_seconds": j.Duration,
			"completed_at":     j.CompletedAt,
		}
	}
	return c.JSON(out)
}
