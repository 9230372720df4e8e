package dispatch

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-12-20", "2025-12-20", true},
		{"2025-12-20T19:00:00", "2025-12-20", true},
		{"2025-12-20 19:00:00", "2025-12-20", true},
		{"20/12/2025", "", false},
		{"2025-13-40", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeDate(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("normalizeDate(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestOptionFields(t *testing.T) {
	empty := runScraperRequest{}
	if got := empty.optionFields(); got != nil {
		t.Errorf("empty request should yield nil options, got %v", got)
	}

	req := runScraperRequest{
		LawnClubTime:     "7:00 PM",
		LawnClubDuration: "2 hr",
		ClaysLocation:    "Soho",
		F1Experience:     "Team Racing",
	}
	got := req.optionFields()
	want := map[string]string{
		"selected_time":     "7:00 PM",
		"selected_duration": "2 hr",
		"location":          "Soho",
		"experience":        "Team Racing",
	}
	if len(got) != len(want) {
		t.Fatalf("options = %v", got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("option %q = %q, want %q", k, got[k], v)
		}
	}

	// SPIN's time field wins when both time fields are set.
	both := runScraperRequest{LawnClubTime: "6:00 PM", SpinTime: "8:00 PM"}
	if got := both.optionFields()["selected_time"]; got != "8:00 PM" {
		t.Errorf("selected_time = %q, want 8:00 PM", got)
	}
}
