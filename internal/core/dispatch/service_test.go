package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"slotscout/internal/config"
	"slotscout/internal/core/task"
	"slotscout/internal/venue"

	"github.com/hibiken/asynq"
)

type fakeTracker struct {
	nextID int
	keys   map[string]string
	states map[string][]string
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{keys: map[string]string{}, states: map[string][]string{}}
}

func (f *fakeTracker) Create(_ context.Context, venueKey string, _ int, _ string) (string, error) {
	f.nextID++
	id := fmt.Sprintf("job-%d", f.nextID)
	f.keys[id] = venueKey
	f.states[id] = []string{task.StatePending}
	return id, nil
}

func (f *fakeTracker) Advance(_ context.Context, taskID string, u task.Update) error {
	if u.State != nil {
		f.states[taskID] = append(f.states[taskID], *u.State)
	}
	return nil
}

type fakeEnqueuer struct {
	payloads []VenueScrapePayload
	err      error
}

func (f *fakeEnqueuer) Enqueue(t *asynq.Task, _ string, _ int, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	var p VenueScrapePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

func newTestService(tracker *fakeTracker, queue *fakeEnqueuer) *Service {
	return NewService(venue.NewRegistry(), tracker, queue, config.Config{
		TaskMaxRetries:   0,
		JobHardLimit:     30 * time.Minute,
		DefaultPartySize: 6,
	})
}

func TestDispatchSingle(t *testing.T) {
	tracker := newFakeTracker()
	queue := &fakeEnqueuer{}
	svc := newTestService(tracker, queue)

	id, err := svc.DispatchSingle(context.Background(), "hijingo", 4, "2025-12-20", nil)
	if err != nil {
		t.Fatalf("DispatchSingle: %v", err)
	}
	if len(queue.payloads) != 1 {
		t.Fatalf("enqueued %d payloads, want 1", len(queue.payloads))
	}
	p := queue.payloads[0]
	if p.TaskID != id || p.VenueKey != "hijingo" || p.Guests != 4 || p.TargetDate != "2025-12-20" {
		t.Errorf("payload = %+v", p)
	}
	if got := tracker.states[id]; len(got) != 1 || got[0] != task.StatePending {
		t.Errorf("states = %v, job must stay PENDING until the worker picks it up", got)
	}
}

func TestDispatchSingleUnknownVenue(t *testing.T) {
	tracker := newFakeTracker()
	svc := newTestService(tracker, &fakeEnqueuer{})

	_, err := svc.DispatchSingle(context.Background(), "nonexistent_venue", 4, "2025-12-20", nil)
	if !errors.Is(err, venue.ErrUnknownVenue) {
		t.Fatalf("got %v, want ErrUnknownVenue", err)
	}
	if len(tracker.keys) != 0 {
		t.Errorf("no job row may be created for an unknown venue, got %v", tracker.keys)
	}
}

func TestDispatchSingleEnqueueFailureMarksJobFailed(t *testing.T) {
	tracker := newFakeTracker()
	queue := &fakeEnqueuer{err: errors.New("broker down")}
	svc := newTestService(tracker, queue)

	_, err := svc.DispatchSingle(context.Background(), "hijingo", 4, "2025-12-20", nil)
	if err == nil {
		t.Fatal("expected enqueue error")
	}
	if len(tracker.keys) != 1 {
		t.Fatalf("jobs created = %d, want 1", len(tracker.keys))
	}
	for id := range tracker.keys {
		got := tracker.states[id]
		if len(got) != 2 || got[1] != task.StateFailure {
			t.Errorf("states = %v, want terminal FAILURE", got)
		}
	}
}

func TestDispatchCityFanOut(t *testing.T) {
	tracker := newFakeTracker()
	queue := &fakeEnqueuer{}
	svc := newTestService(tracker, queue)

	dates := []string{"2025-12-20", "2025-12-21"}
	parentID, err := svc.DispatchCity(context.Background(), venue.CityNYC, 4, dates, "")
	if err != nil {
		t.Fatalf("DispatchCity: %v", err)
	}

	nycVenues := len(venue.NewRegistry().CityKeys(venue.CityNYC))
	if nycVenues != 21 {
		t.Fatalf("NYC venue count = %d, want 21", nycVenues)
	}
	if want := nycVenues * len(dates); len(queue.payloads) != want {
		t.Errorf("enqueued %d children, want venues x dates = %d", len(queue.payloads), want)
	}

	// One row per child plus the parent.
	if len(tracker.keys) != nycVenues*len(dates)+1 {
		t.Errorf("job rows = %d", len(tracker.keys))
	}
	if tracker.keys[parentID] != "all_nyc_2025-12-20_2025-12-21" {
		t.Errorf("parent key = %q", tracker.keys[parentID])
	}

	wantStates := []string{task.StatePending, task.StateStarted, task.StateSubmitted}
	got := tracker.states[parentID]
	if len(got) != len(wantStates) {
		t.Fatalf("parent states = %v", got)
	}
	for i, s := range wantStates {
		if got[i] != s {
			t.Fatalf("parent states = %v, want %v", got, wantStates)
		}
	}

	seen := map[string]bool{}
	for _, p := range queue.payloads {
		if p.Guests != 4 {
			t.Fatalf("child guests = %d", p.Guests)
		}
		seen[p.VenueKey+"|"+p.TargetDate] = true
	}
	if len(seen) != len(queue.payloads) {
		t.Errorf("duplicate venue/date pairs among children")
	}
}

func TestDispatchRefreshCycle(t *testing.T) {
	tracker := newFakeTracker()
	queue := &fakeEnqueuer{}
	svc := newTestService(tracker, queue)

	parents, err := svc.DispatchRefreshCycle(context.Background())
	if err != nil {
		t.Fatalf("DispatchRefreshCycle: %v", err)
	}
	// 2 cities x 6 five-day chunks.
	if len(parents) != 12 {
		t.Fatalf("parents = %d, want 12", len(parents))
	}

	reg := venue.NewRegistry()
	wantChildren := (len(reg.CityKeys(venue.CityNYC)) + len(reg.CityKeys(venue.CityLondon))) * 30
	if len(queue.payloads) != wantChildren {
		t.Errorf("children = %d, want %d", len(queue.payloads), wantChildren)
	}
	for _, p := range queue.payloads {
		if p.Guests != 6 {
			t.Fatalf("refresh child guests = %d, want default party size", p.Guests)
		}
	}
}
