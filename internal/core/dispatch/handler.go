package dispatch

import (
	"errors"
	"strings"
	"time"

	"slotscout/internal/venue"
	"slotscout/internal/venue/adapters"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	dispatch *Service
	registry *venue.Registry
}

func NewHandler(dispatch *Service, registry *venue.Registry) *Handler {
	return &Handler{dispatch: dispatch, registry: registry}
}

type runScraperRequest struct {
	Website           string `json:"website"`
	Guests            int    `json:"guests"`
	TargetDate        string `json:"target_date"`
	LawnClubOption    string `json:"lawn_club_option"`
	LawnClubTime      string `json:"lawn_club_time"`
	LawnClubDuration  string `json:"lawn_club_duration"`
	SpinTime          string `json:"spin_time"`
	ClaysLocation     string `json:"clays_location"`
	PuttshackLocation string `json:"puttshack_location"`
	F1Experience      string `json:"f1_experience"`
}

// optionFields maps the flat API fields onto the per-venue option names.
func (r runScraperRequest) optionFields() map[string]string {
	opts := map[string]string{}
	put := func(name, value string) {
		if value != "" {
			opts[name] = value
		}
	}
	put("selected_time", r.LawnClubTime)
	put("selected_time", r.SpinTime)
	put("selected_duration", r.LawnClubDuration)
	put("location", r.ClaysLocation)
	put("location", r.PuttshackLocation)
	put("experience", r.F1Experience)
	if len(opts) == 0 {
		return nil
	}
	return opts
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "bad_request", "message": msg,
	})
}

// normalizeDate validates YYYY-MM-DD and strips any accidental time
// component.
func normalizeDate(raw string) (string, bool) {
	d := strings.SplitN(strings.SplitN(raw, "T", 2)[0], " ", 2)[0]
	if _, err := time.Parse("2006-01-02", d); err != nil {
		return "", false
	}
	return d, true
}

// HandleRunScraper serves POST /run_scraper.
func (h *Handler) HandleRunScraper(c *fiber.Ctx) error {
	var req runScraperRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Guests < 1 {
		return badRequest(c, "guests must be a positive integer")
	}
	if req.Website == "" {
		req.Website = "swingers_nyc"
	}

	targetDate := ""
	if req.TargetDate != "" {
		d, ok := normalizeDate(req.TargetDate)
		if !ok {
			return badRequest(c, "Invalid date format: "+req.TargetDate+". Expected YYYY-MM-DD")
		}
		targetDate = d
	}

	resolved, err := h.registry.ResolveWebsite(req.Website, req.LawnClubOption)
	if err != nil {
		if errors.Is(err, venue.ErrUnknownVenue) {
			return badRequest(c, "Unknown website: "+req.Website)
		}
		return badRequest(c, err.Error())
	}

	// Aggregates fan out across one city for a single date.
	if resolved == venue.AggregateNYC || resolved == venue.AggregateLondon {
		city := venue.CityNYC
		if resolved == venue.AggregateLondon {
			city = venue.CityLondon
		}
		if targetDate == "" {
			targetDate = time.Now().Format("2006-01-02")
		}
		taskID, err := h.dispatch.DispatchCity(c.Context(), city, req.Guests, []string{targetDate}, "")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal_error", "message": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"task_id": taskID, "message": "Scraping started successfully"})
	}

	desc, err := h.registry.Lookup(resolved)
	if err != nil {
		return badRequest(c, "Unknown website: "+req.Website)
	}
	if desc.RequiresDate && targetDate == "" {
		return badRequest(c, desc.DisplayName+" requires a specific target date")
	}

	opts := req.optionFields()
	if err := h.registry.ValidateOptions(desc, opts); err != nil {
		if errors.Is(err, adapters.ErrInvalidInput) {
			return badRequest(c, err.Error())
		}
		return badRequest(c, err.Error())
	}

	taskID, err := h.dispatch.DispatchSingle(c.Context(), resolved, req.Guests, targetDate, opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_error", "message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"task_id": taskID, "message": "Scraping started successfully"})
}

type refreshRequest struct {
	City       string `json:"city"`
	Guests     int    `json:"guests"`
	TargetDate string `json:"target_date"`
}

// HandleRefreshData serves POST /refresh_data: a one-off refresh over
// today and tomorrow by default, narrowable to one city or one date.
func (h *Handler) HandleRefreshData(c *fiber.Ctx) error {
	var req refreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid body")
		}
	}
	if req.Guests < 1 {
		req.Guests = 6
	}

	cities := []venue.City{venue.CityNYC, venue.CityLondon}
	if req.City != "" {
		switch strings.ToLower(req.City) {
		case "nyc", "ny", "new york":
			cities = []venue.City{venue.CityNYC}
		case "london":
			cities = []venue.City{venue.CityLondon}
		default:
			return badRequest(c, "unknown city "+req.City)
		}
	}

	type window struct{ label, date string }
	today := time.Now()
	windows := []window{
		{"today", today.Format("2006-01-02")},
		{"tomorrow", today.AddDate(0, 0, 1).Format("2006-01-02")},
	}
	if req.TargetDate != "" {
		d, ok := normalizeDate(req.TargetDate)
		if !ok {
			return badRequest(c, "Invalid date format: "+req.TargetDate+". Expected YYYY-MM-DD")
		}
		windows = []window{{d, d}}
	}

	var taskIDs []string
	for _, city := range cities {
		for _, w := range windows {
			parentKey := aggregateLabel(city) + "_" + w.label
			id, err := h.dispatch.DispatchCity(c.Context(), city, req.Guests, []string{w.date}, parentKey)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "internal_error", "message": err.Error(),
				})
			}
			taskIDs = append(taskIDs, id)
		}
	}
	return c.JSON(fiber.Map{"task_ids": taskIDs, "message": "Refresh dispatched"})
}
