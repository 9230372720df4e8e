package adapters

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestASLDuration(t *testing.T) {
	cases := []struct {
		guests    int
		brickLane bool
		want      int
	}{
		{2, false, 20},
		{6, false, 60},
		{7, false, 70},
		{8, false, 40},
		{9, false, 50},
		{10, false, 100},
		{2, true, 40},
		{8, true, 80},
		{9, true, 100},
	}
	for _, tc := range cases {
		if got := aslDuration(tc.guests, tc.brickLane); got != tc.want {
			t.Errorf("aslDuration(%d, %v) = %d, want %d", tc.guests, tc.brickLane, got, tc.want)
		}
	}
}

func TestClockLabel(t *testing.T) {
	at := time.Date(2025, 12, 20, 19, 5, 0, 0, time.UTC)
	if got := clockLabel(at); got != "07:05 PM" {
		t.Errorf("clockLabel = %q", got)
	}
	at = time.Date(2025, 12, 20, 0, 30, 0, 0, time.UTC)
	if got := clockLabel(at); got != "12:30 AM" {
		t.Errorf("clockLabel = %q", got)
	}
}

func TestBounceBookingURL(t *testing.T) {
	raw := bounceBookingURL(6, "2025-12-20", "19:00")
	if !strings.HasPrefix(raw, dmnBookingBase+"?") {
		t.Fatalf("unexpected base: %q", raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse booking URL: %v", err)
	}
	q := u.Query()
	if q.Get("venue_id") != bounceVenueID {
		t.Errorf("venue_id = %q", q.Get("venue_id"))
	}
	if q.Get("num_people") != "6" || q.Get("date") != "2025-12-20" || q.Get("time") != "19:00" {
		t.Errorf("query = %v", q)
	}
	if q.Get("duration") != "55" {
		t.Errorf("duration = %q", q.Get("duration"))
	}
}

func TestASLBookingURL(t *testing.T) {
	loc, ok := aslLocations["brick_lane"]
	if !ok {
		t.Fatal("brick_lane location missing")
	}
	raw := aslBookingURL(loc, 4, "2025-12-20", "20:00", aslDuration(4, loc.brickLane))
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse booking URL: %v", err)
	}
	q := u.Query()
	if q.Get("venue_id") != loc.venueID || q.Get("type") != loc.bookingType {
		t.Errorf("query = %v", q)
	}
	if q.Get("duration") != "80" {
		t.Errorf("duration = %q", q.Get("duration"))
	}
}
