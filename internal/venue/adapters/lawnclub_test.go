package adapters

import "testing"

func TestLawnClubTimeGrid(t *testing.T) {
	grid := LawnClubTimeGrid()
	if len(grid) != 96 {
		t.Fatalf("grid length = %d, want 96", len(grid))
	}
	if grid[0] != "6:00 AM" {
		t.Errorf("first label = %q", grid[0])
	}
	if grid[95] != "5:45 AM" {
		t.Errorf("last label = %q", grid[95])
	}
	// Noon and midnight keep their two-digit hour; only the leading zero
	// of single-digit hours is trimmed.
	seen := make(map[string]bool, len(grid))
	for _, label := range grid {
		if seen[label] {
			t.Errorf("duplicate label %q", label)
		}
		seen[label] = true
	}
	if !seen["12:00 PM"] || !seen["12:00 AM"] {
		t.Errorf("grid missing noon or midnight: %v", grid)
	}
}

func TestNormalizeLawnClubTime(t *testing.T) {
	cases := []struct{ in, want string }{
		{"07:00 pm", "7:00 PM"},
		{"7:00   PM", "7:00 PM"},
		{"12:15 am", "12:15 AM"},
	}
	for _, tc := range cases {
		if got := NormalizeLawnClubTime(tc.in); got != tc.want {
			t.Errorf("NormalizeLawnClubTime(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeLawnClubDuration(t *testing.T) {
	if got := NormalizeLawnClubDuration("2  HR"); got != "2 hr" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeLawnClubDuration("1 Hr 30 Min"); got != "1 hr 30 min" {
		t.Errorf("got %q", got)
	}
}

func TestContainsNormalized(t *testing.T) {
	if !containsNormalized(LawnClubDurations, "2 HR", NormalizeLawnClubDuration) {
		t.Error("2 HR should match the duration list")
	}
	if containsNormalized(LawnClubDurations, "4 hr", NormalizeLawnClubDuration) {
		t.Error("4 hr should not match the duration list")
	}
}
