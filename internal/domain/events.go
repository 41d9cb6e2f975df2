package domain

import "encoding/json"

// EngineEventType tags an event emitted by the evaluation engine.
type EngineEventType string

const (
	EngineEventStart      EngineEventType = "start"
	EngineEventError      EngineEventType = "error"
	EngineEventFatalError EngineEventType = "fatal_error"
	EngineEventComplete   EngineEventType = "complete"
	EngineEventSuccess    EngineEventType = "success"
)

// EngineEvent is one tagged event from an evaluation engine session.
type EngineEvent struct {
	Type EngineEventType `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// StartEventData is the data for a start event. The engine assigns the run id;
// the coordinator only learns it here.
type StartEventData struct {
	RunID         string `json:"run_id"`
	NumDatapoints int    `json:"num_datapoints"`
}

// ErrorEventData is the data for a per-datapoint error event.
type ErrorEventData struct {
	DatapointID string `json:"datapoint_id,omitempty"`
	Message     string `json:"message"`
}

// FatalErrorEventData is the data for a fatal_error event.
type FatalErrorEventData struct {
	Message string `json:"message"`
}
