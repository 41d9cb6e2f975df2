// Package domain defines the core domain models for the evaluation coordinator.
package domain

import "time"

// EvaluationError is a single error reported by the evaluation engine,
// either for one datapoint or for the run as a whole.
type EvaluationError struct {
	DatapointID string `json:"datapoint_id,omitempty"`
	Message     string `json:"message"`
}

// RunSnapshot is a point-in-time, caller-owned copy of one evaluation run.
// It never carries the run's cancellation capability; that stays inside the
// registry.
type RunSnapshot struct {
	RunID       string            `json:"run_id"`
	VariantName string            `json:"variant_name"`
	Started     time.Time         `json:"started"`
	Completed   *time.Time        `json:"completed,omitempty"`
	Cancelled   bool              `json:"cancelled"`
	Errors      []EvaluationError `json:"errors"`
}

// CancelResult reports the outcome of a cancel request.
// Cancelled means the cancellation signal was actually delivered;
// AlreadyCompleted means the run reached a terminal state first.
type CancelResult struct {
	Cancelled        bool `json:"cancelled"`
	AlreadyCompleted bool `json:"already_completed"`
}

// Datapoint is one row of a dataset served by the paged listing endpoint.
type Datapoint struct {
	ID              string    `json:"id"`
	DatasetName     string    `json:"dataset_name"`
	Input           string    `json:"input"`
	ReferenceOutput string    `json:"reference_output,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
