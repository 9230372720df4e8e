package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"slotscout/internal/config"
	"slotscout/internal/core/task"
	"slotscout/internal/logger"
	"slotscout/internal/platform/tasks"
	"slotscout/internal/venue"

	"github.com/hibiken/asynq"
)

// VenueScrapePayload is the wire body of one scrape:venue task.
type VenueScrapePayload struct {
	TaskID     string            `json:"task_id"`
	VenueKey   string            `json:"venue_key"`
	Guests     int               `json:"guests"`
	TargetDate string            `json:"target_date"`
	Options    map[string]string `json:"options,omitempty"`
}

// Tracker is the slice of the task service the dispatcher drives.
type Tracker interface {
	Create(ctx context.Context, venueKey string, guests int, targetDate string) (string, error)
	Advance(ctx context.Context, taskID string, u task.Update) error
}

// Enqueuer puts work items on the scraping queue.
type Enqueuer interface {
	Enqueue(t *asynq.Task, queue string, maxRetries int, timeout time.Duration) error
}

type Service struct {
	registry *venue.Registry
	tracker  Tracker
	queue    Enqueuer
	cfg      config.Config
	log      *logger.Logger
}

func NewService(registry *venue.Registry, tracker Tracker, queue Enqueuer, cfg config.Config) *Service {
	return &Service{
		registry: registry,
		tracker:  tracker,
		queue:    queue,
		cfg:      cfg,
		log:      logger.New("DispatchService"),
	}
}

// DispatchSingle creates one PENDING job and enqueues its work item.
func (s *Service) DispatchSingle(ctx context.Context, venueKey string, guests int, targetDate string, options map[string]string) (string, error) {
	if _, err := s.registry.Lookup(venueKey); err != nil {
		return "", err
	}

	taskID, err := s.tracker.Create(ctx, venueKey, guests, targetDate)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(VenueScrapePayload{
		TaskID:     taskID,
		VenueKey:   venueKey,
		Guests:     guests,
		TargetDate: targetDate,
		Options:    options,
	})
	if err != nil {
		return "", fmt.Errorf("encode scrape payload: %w", err)
	}

	t := asynq.NewTask(tasks.TaskTypeVenueScrape, payload)
	if err := s.queue.Enqueue(t, tasks.QueueScraping, s.cfg.TaskMaxRetries, s.cfg.JobHardLimit); err != nil {
		failMsg := "enqueue failed: " + err.Error()
		_ = s.tracker.Advance(ctx, taskID, task.Update{
			State: task.String(task.StateFailure),
			Error: task.String(failMsg),
		})
		return "", fmt.Errorf("enqueue scrape for %s: %w", venueKey, err)
	}
	return taskID, nil
}

func aggregateLabel(city venue.City) string {
	if city == venue.CityNYC {
		return venue.AggregateNYC
	}
	return venue.AggregateLondon
}

// DispatchCity creates an aggregate parent under parentKey and fans out
// one child per (venue in city, date) pair. The parent ends in SUBMITTED
// as soon as every child is enqueued; it never waits on children.
func (s *Service) DispatchCity(ctx context.Context, city venue.City, guests int, dates []string, parentKey string) (string, error) {
	if parentKey == "" {
		parentKey = fmt.Sprintf("%s_%s", aggregateLabel(city), strings.Join(dates, "_"))
	}

	parentID, err := s.tracker.Create(ctx, parentKey, guests, strings.Join(dates, ","))
	if err != nil {
		return "", err
	}
	_ = s.tracker.Advance(ctx, parentID, task.Update{
		State:    task.String(task.StateStarted),
		Progress: task.String("Dispatching child jobs"),
	})

	keys := s.registry.CityKeys(city)
	submitted := 0
	for _, key := range keys {
		for _, date := range dates {
			if _, err := s.DispatchSingle(ctx, key, guests, date, nil); err != nil {
				s.log.LogWarnf("child dispatch %s %s failed: %v", key, date, err)
				continue
			}
			submitted++
		}
	}

	_ = s.tracker.Advance(ctx, parentID, task.Update{
		State:    task.String(task.StateSubmitted),
		Progress: task.String(fmt.Sprintf("Submitted %d child jobs", submitted)),
	})
	s.log.LogInfof("%s: submitted %d/%d children", parentKey, submitted, len(keys)*len(dates))
	return parentID, nil
}

// DispatchRefreshCycle observes every venue across the next 30 days: the
// window is split into 5-day chunks and each city x chunk becomes one
// aggregate parent, 12 in total.
func (s *Service) DispatchRefreshCycle(ctx context.Context) ([]string, error) {
	const (
		windowDays = 30
		chunkDays  = 5
	)

	today := time.Now()
	dates := make([]string, 0, windowDays)
	for i := 0; i < windowDays; i++ {
		dates = append(dates, today.AddDate(0, 0, i).Format("2006-01-02"))
	}

	var parents []string
	for _, city := range []venue.City{venue.CityNYC, venue.CityLondon} {
		for start := 0; start < len(dates); start += chunkDays {
			end := start + chunkDays
			if end > len(dates) {
				end = len(dates)
			}
			chunk := dates[start:end]
			parentKey := fmt.Sprintf("%s_%s_%s", aggregateLabel(city), chunk[0], chunk[len(chunk)-1])
			id, err := s.DispatchCity(ctx, city, s.cfg.DefaultPartySize, chunk, parentKey)
			if err != nil {
				s.log.LogErrorf("refresh chunk %s failed: %v", parentKey, err)
				continue
			}
			parents = append(parents, id)
		}
	}
	if len(parents) == 0 {
		return nil, fmt.Errorf("refresh cycle dispatched nothing")
	}
	return parents, nil
}

// HandleRefreshCycleTask is the asynq handler behind the periodic
// scrape:refresh_cycle task.
func (s *Service) HandleRefreshCycleTask(ctx context.Context, _ *asynq.Task) error {
	parents, err := s.DispatchRefreshCycle(ctx)
	if err != nil {
		return err
	}
	s.log.LogInfof("refresh cycle dispatched %d parents", len(parents))
	return nil
}
