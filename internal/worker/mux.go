// Package worker maps scrape task types onto their asynq handlers.
package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// Handler processes one dequeued task.
type Handler func(ctx context.Context, task *asynq.Task) error

// Mux routes task types to handlers. All registration happens during
// startup wiring; a duplicate task type is a wiring bug and panics, the
// same rule the venue registry applies to duplicate keys.
type Mux struct {
	mux   *asynq.ServeMux
	types map[string]bool
}

func NewMux() *Mux {
	return &Mux{mux: asynq.NewServeMux(), types: map[string]bool{}}
}

func (m *Mux) HandleFunc(taskType string, h Handler) {
	if m.types[taskType] {
		panic(fmt.Sprintf("worker: duplicate handler for task type %q", taskType))
	}
	m.types[taskType] = true
	m.mux.HandleFunc(taskType, h)
}

// Handles reports whether a handler is registered for taskType.
func (m *Mux) Handles(taskType string) bool { return m.types[taskType] }

// Mux exposes the underlying ServeMux for asynq.Server.Start.
func (m *Mux) Mux() *asynq.ServeMux { return m.mux }
