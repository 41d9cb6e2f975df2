// Package engine abstracts the external evaluation engine behind a single
// streaming-session interface, so the coordinator does not care whether the
// engine runs in a remote gateway or a local child process.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/evalboard/evalboard/internal/domain"
)

// Engine opens streaming evaluation sessions.
type Engine interface {
	// Open starts one evaluation run and returns its event stream.
	// Cancelling ctx requests early termination of the session.
	Open(ctx context.Context, req domain.StartEvaluationRequest) (*Session, error)
}

// Session is one live evaluation run's event stream. Events() is closed when
// the stream ends; Err() reports why, if the stream failed rather than
// finishing naturally.
type Session struct {
	events chan domain.EngineEvent

	mu  sync.Mutex
	err error
}

// NewSession creates a session with a buffered event channel. The producer
// side calls Emit/Fail/CloseSend; implementations in this package and test
// fakes share it.
func NewSession(buffer int) *Session {
	return &Session{events: make(chan domain.EngineEvent, buffer)}
}

// Events returns the stream of tagged engine events.
func (s *Session) Events() <-chan domain.EngineEvent {
	return s.events
}

// Err returns the stream failure, if any. Only meaningful after Events() is
// closed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Emit delivers one event to the consumer.
func (s *Session) Emit(ev domain.EngineEvent) {
	s.events <- ev
}

// Fail records a stream failure and closes the event channel.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.events)
}

// CloseSend closes the event channel after a naturally finished stream.
func (s *Session) CloseSend() {
	close(s.events)
}

// ParseStartEvent parses a start event payload.
func ParseStartEvent(data json.RawMessage) (*domain.StartEventData, error) {
	var start domain.StartEventData
	if err := json.Unmarshal(data, &start); err != nil {
		return nil, fmt.Errorf("failed to parse start event: %w", err)
	}
	if start.RunID == "" {
		return nil, fmt.Errorf("start event missing run_id")
	}
	return &start, nil
}

// ParseErrorEvent parses a per-datapoint error event payload.
func ParseErrorEvent(data json.RawMessage) (*domain.ErrorEventData, error) {
	var evalErr domain.ErrorEventData
	if err := json.Unmarshal(data, &evalErr); err != nil {
		return nil, fmt.Errorf("failed to parse error event: %w", err)
	}
	return &evalErr, nil
}

// ParseFatalErrorEvent parses a fatal_error event payload.
func ParseFatalErrorEvent(data json.RawMessage) (*domain.FatalErrorEventData, error) {
	var fatal domain.FatalErrorEventData
	if err := json.Unmarshal(data, &fatal); err != nil {
		return nil, fmt.Errorf("failed to parse fatal_error event: %w", err)
	}
	return &fatal, nil
}
