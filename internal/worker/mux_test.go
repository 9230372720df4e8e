package worker

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
)

func noopHandler(context.Context, *asynq.Task) error { return nil }

func TestMuxRegistration(t *testing.T) {
	m := NewMux()
	m.HandleFunc("scrape:venue", noopHandler)
	m.HandleFunc("scrape:refresh_cycle", noopHandler)

	if !m.Handles("scrape:venue") || !m.Handles("scrape:refresh_cycle") {
		t.Error("registered task types not reported")
	}
	if m.Handles("scrape:other") {
		t.Error("unregistered task type reported as handled")
	}
	if m.Mux() == nil {
		t.Error("underlying ServeMux missing")
	}
}

func TestMuxDuplicateRegistrationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration must panic")
		}
	}()
	m := NewMux()
	m.HandleFunc("scrape:venue", noopHandler)
	m.HandleFunc("scrape:venue", noopHandler)
}
