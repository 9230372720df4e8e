package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"

	"slotscout/internal/venue/adapters"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		outcome string
	}{
		{"invalid input", adapters.Invalid("party too big"), "invalid_input"},
		{"permanent", adapters.Permanent("layout changed"), "permanent"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"transient sentinel", adapters.Transient("connection reset"), "transient"},
		{"unwrapped error", errors.New("something else"), "transient"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, msg := classify(tc.err)
			if outcome != tc.outcome {
				t.Errorf("outcome = %q, want %q", outcome, tc.outcome)
			}
			if msg == "" {
				t.Error("message must not be empty")
			}
		})
	}
}

func TestClassifyDeadlineMessage(t *testing.T) {
	_, msg := classify(context.DeadlineExceeded)
	if !strings.Contains(msg, "time limit") {
		t.Errorf("message = %q", msg)
	}
}

func TestGoogleFallbackURL(t *testing.T) {
	got := googleFallbackURL("Flight Club Darts (Angel)")
	if !strings.HasPrefix(got, "https://www.google.com/search?q=") {
		t.Fatalf("url = %q", got)
	}
	if !strings.Contains(got, "Flight+Club+Darts") || !strings.Contains(got, "booking") {
		t.Errorf("url = %q", got)
	}
}
