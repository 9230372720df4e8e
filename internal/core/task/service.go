package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"slotscout/internal/logger"
	"slotscout/internal/platform/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Job states. SUBMITTED is reserved for aggregate parents that fan out
// children and do not wait on them.
const (
	StatePending   = "PENDING"
	StateStarted   = "STARTED"
	StateSubmitted = "SUBMITTED"
	StateSuccess   = "SUCCESS"
	StateFailure   = "FAILURE"
)

// ErrNotFound marks a lookup for an unknown job id.
var ErrNotFound = errors.New("task not found")

func IsTerminal(state string) bool {
	return state == StateSuccess || state == StateFailure || state == StateSubmitted
}

// Job is one unit of scraping work with persistent status tracking.
type Job struct {
	TaskID        string     `json:"task_id"`
	VenueKey      string     `json:"venue_key"`
	Guests        int        `json:"guests"`
	TargetDate    string     `json:"target_date"`
	State         string     `json:"status"`
	Progress      string     `json:"progress"`
	CurrentVenue  string     `json:"current_venue"`
	SlotsFound    int        `json:"total_slots_found"`
	Error         string     `json:"error,omitempty"`
	Duration      *float64   `json:"duration_seconds,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

type Service struct {
	db  *postgres.Service
	log *logger.Logger
}

func NewService(db *postgres.Service) *Service {
	return &Service{db: db, log: logger.New("TaskService")}
}

// Create records a new job in PENDING and returns its id.
func (s *Service) Create(ctx context.Context, venueKey string, guests int, targetDate string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Pool().Exec(ctx, `
		INSERT INTO scraping_tasks (task_id, venue_key, guests, target_date)
		VALUES ($1, $2, $3, $4)`,
		id, venueKey, guests, targetDate,
	)
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return id, nil
}

// Update carries the optional fields of one Advance call. Nil fields are
// left untouched.
type Update struct {
	State        *string
	Progress     *string
	CurrentVenue *string
	SlotsFound   *int
	Error        *string
}

func String(v string) *string { return &v }

func Int(v int) *int { return &v }

// Advance applies a partial update. A terminal state stamps completed_at
// and duration_seconds, and only lands if the current state is still
// non-terminal, so a late writer cannot resurrect a finished job.
func (s *Service) Advance(ctx context.Context, taskID string, u Update) error {
	var sets []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if u.State != nil {
		sets = append(sets, "status = "+arg(*u.State))
		if IsTerminal(*u.State) {
			sets = append(sets,
				"completed_at = now()",
				"duration_seconds = EXTRACT(EPOCH FROM (now() - created_at))")
		}
	}
	if u.Progress != nil {
		sets = append(sets, "progress = "+arg(*u.Progress))
	}
	if u.CurrentVenue != nil {
		sets = append(sets, "current_venue = "+arg(*u.CurrentVenue))
	}
	if u.SlotsFound != nil {
		sets = append(sets, "total_slots_found = "+arg(*u.SlotsFound))
	}
	if u.Error != nil {
		sets = append(sets, "error = "+arg(*u.Error))
	}
	if len(sets) == 0 {
		return nil
	}

	query := "UPDATE scraping_tasks SET " + strings.Join(sets, ", ") +
		" WHERE task_id = " + arg(taskID) +
		" AND status NOT IN ('SUCCESS', 'FAILURE', 'SUBMITTED')"
	tag, err := s.db.Pool().Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("advance task %s: %w", taskID, err)
	}
	if tag.RowsAffected() == 0 {
		s.log.LogDebugf("task %s not advanced (terminal or missing)", taskID)
	}
	return nil
}

const jobColumns = `task_id, venue_key, guests, COALESCE(target_date, ''), status, progress,
	COALESCE(current_venue, ''), total_slots_found, COALESCE(error, ''),
	duration_seconds, created_at, completed_at`

func scanJob(row interface{ Scan(...any) error }) (Job, error) {
	var j Job
	err := row.Scan(&j.TaskID, &j.VenueKey, &j.Guests, &j.TargetDate, &j.State,
		&j.Progress, &j.CurrentVenue, &j.SlotsFound, &j.Error,
		&j.Duration, &j.CreatedAt, &j.CompletedAt)
	return j, err
}

// Get fetches one job by id.
func (s *Service) Get(ctx context.Context, taskID string) (Job, error) {
	row := s.db.Pool().QueryRow(ctx,
		"SELECT "+jobColumns+" FROM scraping_tasks WHERE task_id = $1", taskID)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, fmt.Errorf("get task %s: %w", taskID, err)
	}
	return j, nil
}

// LatestOf returns the most recent job whose venue_key matches the SQL
// LIKE pattern and whose state is one of states (all states when empty).
func (s *Service) LatestOf(ctx context.Context, keyPattern string, states ...string) (Job, error) {
	query := "SELECT " + jobColumns + " FROM scraping_tasks WHERE venue_key LIKE $1"
	args := []any{keyPattern}
	if len(states) > 0 {
		query += " AND status = ANY($2)"
		args = append(args, states)
	}
	query += " ORDER BY created_at DESC LIMIT 1"

	row := s.db.Pool().QueryRow(ctx, query, args...)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, fmt.Errorf("latest of %s: %w", keyPattern, err)
	}
	return j, nil
}
