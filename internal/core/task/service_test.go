package task

import (
	"strings"
	"testing"
)

func TestIsTerminal(t *testing.T) {
	terminal := []string{StateSuccess, StateFailure, StateSubmitted}
	for _, s := range terminal {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%q) = false", s)
		}
	}
	for _, s := range []string{StatePending, StateStarted, ""} {
		if IsTerminal(s) {
			t.Errorf("IsTerminal(%q) = true", s)
		}
	}
}

func TestUpdateHelpers(t *testing.T) {
	u := Update{
		State:      String(StateStarted),
		SlotsFound: Int(12),
	}
	if u.State == nil || *u.State != StateStarted {
		t.Errorf("State = %v", u.State)
	}
	if u.SlotsFound == nil || *u.SlotsFound != 12 {
		t.Errorf("SlotsFound = %v", u.SlotsFound)
	}
	if u.Progress != nil || u.Error != nil || u.CurrentVenue != nil {
		t.Error("unset fields must stay nil")
	}
}

func TestJobColumnsMatchScan(t *testing.T) {
	// scanJob reads exactly one value per listed column. Commas inside
	// COALESCE(...) are not column separators.
	depth, cols := 0, 1
	for _, r := range jobColumns {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				cols++
			}
		}
	}
	if cols != 12 {
		t.Fatalf("jobColumns lists %d columns, scanJob scans 12", cols)
	}
	if !strings.Contains(jobColumns, "completed_at") {
		t.Error("jobColumns missing completed_at")
	}
}
