package adapters

import "testing"

func TestDurationHours(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{60, "1h"},
		{120, "2h"},
		{30, "0.5h"},
		{90, "1.5h"},
		{105, "1.75h"},
	}
	for _, tc := range cases {
		if got := durationHours(tc.minutes); got != tc.want {
			t.Errorf("durationHours(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestFiveIronLocationsComplete(t *testing.T) {
	want := []string{
		"fidi", "flatiron", "grand_central", "herald_square",
		"long_island_city", "upper_east_side", "rockefeller_center",
	}
	for _, key := range want {
		if _, ok := fiveIronLocations[key]; !ok {
			t.Errorf("missing five iron location %q", key)
		}
	}
	if len(fiveIronLocations) != len(want) {
		t.Errorf("got %d locations, want %d", len(fiveIronLocations), len(want))
	}
}
