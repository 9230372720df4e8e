package slot

import (
	"strconv"

	"slotscout/internal/platform/redis"

	"github.com/gofiber/fiber/v2"
)

// dataCacheTTL keeps /data responses briefly in redis so dashboard
// polling does not hammer the store between refresh cycles.
const dataCacheTTL = 60

type Handler struct {
	slots *Service
	cache *redis.Service
}

func NewHandler(slots *Service, cache *redis.Service) *Handler {
	return &Handler{slots: slots, cache: cache}
}

type dataResponse struct {
	Data       []Record `json:"data"`
	TotalCount int      `json:"total_count"`
}

// HandleGetData serves GET /data with the filter vocabulary mapped from
// query parameters.
func (h *Handler) HandleGetData(c *fiber.Ctx) error {
	guests := 0
	if g := c.Query("guests"); g != "" {
		n, err := strconv.Atoi(g)
		if err != nil || n < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "bad_request", "message": "guests must be a positive integer",
			})
		}
		guests = n
	}

	cacheKey := "data:" + string(c.Request().URI().QueryString())
	var cached dataResponse
	if err := h.cache.CacheGet(c.Context(), cacheKey, &cached); err == nil {
		return c.JSON(cached)
	}

	records, err := h.slots.Query(c.Context(), Filters{
		City:      c.Query("city"),
		VenueName: c.Query("venue_name"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
		Guests:    guests,
		Status:    c.Query("status"),
		Search:    c.Query("search"),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_error", "message": err.Error(),
		})
	}
	if records == nil {
		records = []Record{}
	}

	resp := dataResponse{Data: records, TotalCount: len(records)}
	_ = h.cache.CacheSet(c.Context(), cacheKey, resp, dataCacheTTL)
	return c.JSON(resp)
}

type clearRequest struct {
	City     string `json:"city"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

// HandleClearData serves POST /clear_data. Cached /data responses are
// dropped alongside the rows so readers never see purged slots.
func (h *Handler) HandleClearData(c *fiber.Ctx) error {
	var req clearRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "bad_request", "message": "invalid body",
			})
		}
	}
	deleted, err := h.slots.Purge(c.Context(), Filters{
		City:     req.City,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_error", "message": err.Error(),
		})
	}
	_, _ = h.cache.FlushCache(c.Context(), "data:*")
	return c.JSON(fiber.Map{"deleted": deleted, "message": "Data cleared successfully"})
}
