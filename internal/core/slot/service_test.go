package slot

import (
	"strings"
	"testing"
)

func TestNormalizeCity(t *testing.T) {
	cases := []struct{ in, want string }{
		{"nyc", "NYC"},
		{"NY", "NYC"},
		{"new york", "NYC"},
		{" London ", "London"},
		{"LONDON", "London"},
		{"Paris", "Paris"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeCity(tc.in); got != tc.want {
			t.Errorf("NormalizeCity(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildFilterClauseEmpty(t *testing.T) {
	clause, args := buildFilterClause(Filters{})
	if clause != "" || args != nil {
		t.Fatalf("got %q, %v; want empty", clause, args)
	}
}

func TestBuildFilterClause(t *testing.T) {
	clause, args := buildFilterClause(Filters{
		City:     "nyc",
		DateFrom: "2025-12-20",
		DateTo:   "2025-12-25",
		Guests:   6,
		Search:   "swingers",
	})
	if !strings.HasPrefix(clause, " WHERE ") {
		t.Fatalf("clause = %q", clause)
	}
	if len(args) != 5 {
		t.Fatalf("args = %v", args)
	}
	if args[0] != "NYC" {
		t.Errorf("city arg not normalized: %v", args[0])
	}
	if args[4] != "%swingers%" {
		t.Errorf("search arg = %v", args[4])
	}
	// Search expands to one placeholder reused across three columns.
	if !strings.Contains(clause, "venue_name ILIKE $5 OR time ILIKE $5 OR price ILIKE $5") {
		t.Errorf("clause = %q", clause)
	}
	for i := 1; i <= 5; i++ {
		if !strings.Contains(clause, "$"+string(rune('0'+i))) {
			t.Errorf("clause missing $%d: %q", i, clause)
		}
	}
}

func TestBuildFilterClauseStatusPartialMatch(t *testing.T) {
	clause, args := buildFilterClause(Filters{Status: "Low"})
	if !strings.Contains(clause, "status ILIKE $1") {
		t.Errorf("clause = %q", clause)
	}
	if len(args) != 1 || args[0] != "%Low%" {
		t.Errorf("args = %v", args)
	}
}
