package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"slotscout/internal/config"
	"slotscout/internal/core/dispatch"
	"slotscout/internal/core/slot"
	"slotscout/internal/core/task"
	"slotscout/internal/logger"
	"slotscout/internal/platform/browser"
	"slotscout/internal/telemetry"
	"slotscout/internal/venue"
	"slotscout/internal/venue/adapters"

	"github.com/hibiken/asynq"
)

// Service runs venue scrape jobs: it resolves the adapter, invokes it
// under the job time ceiling, routes slots to the store and status to the
// task tracker.
type Service struct {
	registry *venue.Registry
	slots    *slot.Service
	tracker  *task.Service
	env      *adapters.Env
	cfg      config.Config
	log      *logger.Logger
}

func NewService(registry *venue.Registry, slots *slot.Service, tracker *task.Service, pool *browser.Pool, cfg config.Config) *Service {
	return &Service{
		registry: registry,
		slots:    slots,
		tracker:  tracker,
		env: &adapters.Env{
			Pool:            pool,
			HTTP:            &http.Client{Timeout: 30 * time.Second},
			Log:             logger.New("Adapter"),
			PageLoadTimeout: cfg.PageLoadTimeout,
			SelectorTimeout: cfg.SelectorTimeout,
			FlareSolverrURL: cfg.FlareSolverrURL,
		},
		cfg: cfg,
		log: logger.New("ScrapeService"),
	}
}

// googleFallbackURL is the last resort when neither the adapter nor the
// descriptor table knows a booking entry point.
func googleFallbackURL(displayName string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(displayName+" booking")
}

func classify(err error) (outcome, message string) {
	switch {
	case errors.Is(err, adapters.ErrInvalidInput):
		return "invalid_input", err.Error()
	case errors.Is(err, adapters.ErrPermanent):
		return "permanent", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout", "job exceeded its time limit"
	default:
		return "transient", err.Error()
	}
}

// HandleVenueTask is the asynq handler for scrape:venue.
func (s *Service) HandleVenueTask(ctx context.Context, t *asynq.Task) error {
	var p dispatch.VenueScrapePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode scrape payload: %w", err)
	}

	// The soft limit leaves headroom to record FAILURE before asynq
	// kills the task at the hard limit.
	ctx, cancel := context.WithTimeout(ctx, s.cfg.JobSoftLimit)
	defer cancel()

	start := time.Now()
	s.run(ctx, p)
	telemetry.ScrapeDuration.WithLabelValues(p.VenueKey).Observe(time.Since(start).Seconds())
	return nil
}

func (s *Service) run(ctx context.Context, p dispatch.VenueScrapePayload) {
	fail := func(outcome, msg string) {
		_ = s.tracker.Advance(context.WithoutCancel(ctx), p.TaskID, task.Update{
			State: task.String(task.StateFailure),
			Error: task.String(msg),
		})
		telemetry.ScrapesTotal.WithLabelValues(p.VenueKey, outcome).Inc()
	}

	desc, err := s.registry.Lookup(p.VenueKey)
	if err != nil {
		fail("unknown_venue", err.Error())
		return
	}

	_ = s.tracker.Advance(ctx, p.TaskID, task.Update{
		State:        task.String(task.StateStarted),
		Progress:     task.String("Initializing browser"),
		CurrentVenue: task.String(desc.DisplayName),
	})

	if desc.RequiresDate && p.TargetDate == "" {
		fail("invalid_input", desc.DisplayName+" requires a target date")
		return
	}

	s.log.LogInfof("scraping %s date=%s guests=%d", p.VenueKey, p.TargetDate, p.Guests)
	_ = s.tracker.Advance(ctx, p.TaskID, task.Update{
		Progress: task.String("Scraping " + desc.DisplayName),
	})

	records, err := desc.Scrape(ctx, s.env, adapters.Request{
		PartySize: p.Guests,
		Date:      p.TargetDate,
		Options:   p.Options,
	})
	if err != nil {
		outcome, msg := classify(err)
		s.log.LogWarnf("%s failed (%s): %v", p.VenueKey, outcome, err)
		fail(outcome, msg)
		return
	}

	stored := 0
	for _, rec := range records {
		bookingURL := rec.BookingURL
		if bookingURL == "" {
			bookingURL = desc.DefaultBookingURL
		}
		if bookingURL == "" {
			bookingURL = googleFallbackURL(desc.DisplayName)
		}

		err := s.slots.Upsert(context.WithoutCancel(ctx), slot.Record{
			VenueName:  rec.VenueName,
			City:       string(desc.City),
			Date:       rec.Date,
			Time:       rec.Time,
			Price:      rec.Price,
			Status:     rec.Status,
			Guests:     p.Guests,
			BookingURL: bookingURL,
			VenueData:  rec.Extra,
		})
		if err != nil {
			s.log.LogErrorf("%s: upsert failed: %v", p.VenueKey, err)
			continue
		}
		stored++
		if stored%10 == 0 {
			_ = s.tracker.Advance(ctx, p.TaskID, task.Update{SlotsFound: task.Int(stored)})
		}
	}
	telemetry.SlotsFound.WithLabelValues(p.VenueKey).Add(float64(stored))

	_ = s.tracker.Advance(context.WithoutCancel(ctx), p.TaskID, task.Update{
		State:      task.String(task.StateSuccess),
		Progress:   task.String(fmt.Sprintf("Scraping completed! Found %d slots", stored)),
		SlotsFound: task.Int(stored),
	})
	telemetry.ScrapesTotal.WithLabelValues(p.VenueKey, "success").Inc()
	s.log.LogInfof("%s done: %d slots", p.VenueKey, stored)
}
