package venue

import (
	"errors"
	"testing"
)

func TestDescriptorTableShape(t *testing.T) {
	r := NewRegistry()

	nyc := r.CityKeys(CityNYC)
	if len(nyc) != 21 {
		t.Fatalf("NYC venue count = %d, want 21", len(nyc))
	}
	london := r.CityKeys(CityLondon)
	if len(london) != 15 {
		t.Fatalf("London venue count = %d, want 15", len(london))
	}

	for _, d := range r.All() {
		if d.Scrape == nil {
			t.Errorf("%s: no adapter bound", d.Key)
		}
		if d.DisplayName == "" {
			t.Errorf("%s: empty display name", d.Key)
		}
		if d.DefaultBookingURL == "" {
			t.Errorf("%s: no default booking url", d.Key)
		}
		if d.Kind != KindBrowser && d.Kind != KindAPI {
			t.Errorf("%s: bad kind %q", d.Key, d.Kind)
		}
	}
}

func TestOnlyCalendarVenuesSkipDateRequirement(t *testing.T) {
	r := NewRegistry()
	for _, d := range r.All() {
		wantOptional := d.Key == "swingers_nyc" || d.Key == "swingers_london"
		if d.RequiresDate == wantOptional {
			t.Errorf("%s: RequiresDate = %v", d.Key, d.RequiresDate)
		}
	}
}

func TestLookupUnknownKey(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("axe_throwing_paris")
	if !errors.Is(err, ErrUnknownVenue) {
		t.Fatalf("err = %v, want ErrUnknownVenue", err)
	}
}

func TestExpandAggregate(t *testing.T) {
	r := NewRegistry()

	keys, err := r.ExpandAggregate(AggregateNYC)
	if err != nil {
		t.Fatalf("ExpandAggregate: %v", err)
	}
	if len(keys) != 21 {
		t.Fatalf("all_nyc expanded to %d keys, want 21", len(keys))
	}

	keys, err = r.ExpandAggregate("hijingo")
	if err != nil || len(keys) != 1 || keys[0] != "hijingo" {
		t.Fatalf("concrete key expansion = %v, %v", keys, err)
	}

	if _, err := r.ExpandAggregate("all_tokyo"); !errors.Is(err, ErrUnknownVenue) {
		t.Fatalf("err = %v, want ErrUnknownVenue", err)
	}
}

func TestResolveWebsite(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		website, lawnOption string
		want                string
	}{
		{"all_new_york", "", AggregateNYC},
		{"all_london", "", AggregateLondon},
		{"lawn_club_nyc", "", "lawn_club_nyc_curling_lawns"},
		{"lawn_club_nyc", "croquet_lawns", "lawn_club_nyc_croquet_lawns"},
		{"hijingo", "", "hijingo"},
		{"spin_nyc_midtown", "", "spin_nyc_midtown"},
	}
	for _, tc := range cases {
		got, err := r.ResolveWebsite(tc.website, tc.lawnOption)
		if err != nil {
			t.Errorf("ResolveWebsite(%q, %q): %v", tc.website, tc.lawnOption, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ResolveWebsite(%q, %q) = %q, want %q", tc.website, tc.lawnOption, got, tc.want)
		}
	}

	if _, err := r.ResolveWebsite("lawn_club_nyc", "bocce"); err == nil {
		t.Error("bad lawn club option accepted")
	}
	if _, err := r.ResolveWebsite("minigolf_mars", ""); !errors.Is(err, ErrUnknownVenue) {
		t.Errorf("err = %v, want ErrUnknownVenue", err)
	}
}

func TestValidateOptions(t *testing.T) {
	r := NewRegistry()

	clays, err := r.Lookup("clays_bar")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if err := r.ValidateOptions(clays, map[string]string{"location": "Soho"}); err != nil {
		t.Errorf("valid location rejected: %v", err)
	}
	if err := r.ValidateOptions(clays, map[string]string{"location": "Leeds"}); err == nil {
		t.Error("unknown location accepted")
	}
	if err := r.ValidateOptions(clays, map[string]string{"experience": "Team Racing"}); err == nil {
		t.Error("undeclared option name accepted")
	}

	lawn, err := r.Lookup("lawn_club_nyc_curling_lawns")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	// Times are matched after normalization, so casing and a leading zero
	// are tolerated.
	if err := r.ValidateOptions(lawn, map[string]string{"selected_time": "07:00 pm"}); err != nil {
		t.Errorf("normalized time rejected: %v", err)
	}
	if err := r.ValidateOptions(lawn, map[string]string{"selected_time": "7:07 PM"}); err == nil {
		t.Error("off-grid time accepted")
	}
	if err := r.ValidateOptions(lawn, map[string]string{"selected_duration": "2 HR"}); err != nil {
		t.Errorf("normalized duration rejected: %v", err)
	}
	if err := r.ValidateOptions(lawn, map[string]string{"selected_duration": "4 hr"}); err == nil {
		t.Error("off-grid duration accepted")
	}
}
