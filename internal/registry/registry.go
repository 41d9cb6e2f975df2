// Package registry tracks the in-memory state of live evaluation runs.
package registry

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/evalboard/evalboard/internal/domain"
)

// runRecord is the registry-private state for one evaluation run.
// The cancel func is owned exclusively by the registry and is never part of
// any value handed to a caller.
type runRecord struct {
	runID       string
	variantName string
	started     time.Time
	completed   *time.Time
	cancelled   bool
	errors      []domain.EvaluationError
	cancel      context.CancelFunc
}

// RunRegistry owns the set of live run records. All mutation goes through a
// single mutex; reads return independent copies.
type RunRegistry struct {
	mu   sync.Mutex
	runs map[string]*runRecord

	// cleanup policy, see gc.go
	completedRetention time.Duration
	runningRetention   time.Duration
	sweepInterval      time.Duration
	cleanupEnabled     bool
	janitorStop        chan struct{}

	// now is swappable for tests
	now func() time.Time
}

// NewRunRegistry creates an empty registry with the given retention windows
// for completed and never-completed runs.
func NewRunRegistry(completedRetention, runningRetention time.Duration) *RunRegistry {
	return &RunRegistry{
		runs:               make(map[string]*runRecord),
		completedRetention: completedRetention,
		runningRetention:   runningRetention,
		now:                time.Now,
	}
}

// Create inserts a new record for an engine-assigned run id. Run ids are
// unique by contract; a collision is a programming error and is dropped with
// a log line rather than clobbering the live record's cancel capability.
func (r *RunRegistry) Create(runID, variantName string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[runID]; exists {
		log.Printf("ERROR: run %s already registered, ignoring duplicate create", runID)
		return
	}

	r.runs[runID] = &runRecord{
		runID:       runID,
		variantName: variantName,
		started:     r.now(),
		cancel:      cancel,
	}
	r.maybeStartJanitorLocked()
}

// RecordError prepends an error to the run's log, newest first.
// Unknown run ids are a no-op; the run may already have been swept.
func (r *RunRegistry) RecordError(runID string, evalErr domain.EvaluationError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.runs[runID]
	if !ok {
		return
	}
	rec.errors = append([]domain.EvaluationError{evalErr}, rec.errors...)
}

// Complete marks the run completed. No-op if unknown or already completed.
func (r *RunRegistry) Complete(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.runs[runID]
	if !ok || rec.completed != nil {
		return
	}
	now := r.now()
	rec.completed = &now
}

// Cancel requests best-effort cancellation of a run.
//
// An unknown run returns the zero result. A live run gets its cancel
// capability signalled and is marked completed and cancelled. A run that
// completed first is still flagged cancelled for audit, but the capability is
// not re-signalled: the engine already finished and the underlying context
// may since have been reused.
func (r *RunRegistry) Cancel(runID string) domain.CancelResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.runs[runID]
	if !ok {
		return domain.CancelResult{}
	}

	if rec.completed != nil {
		rec.cancelled = true
		return domain.CancelResult{AlreadyCompleted: true}
	}

	if rec.cancel != nil {
		rec.cancel()
	}
	now := r.now()
	rec.completed = &now
	rec.cancelled = true
	return domain.CancelResult{Cancelled: true}
}

// Get returns an independent snapshot of the run, without the cancel
// capability. The second return is false if the run id is unknown.
func (r *RunRegistry) Get(runID string) (domain.RunSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.runs[runID]
	if !ok {
		return domain.RunSnapshot{}, false
	}
	return rec.snapshot(), true
}

// Remove deletes a record. Only the garbage collector calls this; runs are
// retained after completion so pollers can still read the outcome.
func (r *RunRegistry) Remove(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.runs, runID)
	r.maybeStopJanitorLocked()
}

// Len returns the number of live records.
func (r *RunRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func (rec *runRecord) snapshot() domain.RunSnapshot {
	errs := make([]domain.EvaluationError, len(rec.errors))
	copy(errs, rec.errors)

	var completed *time.Time
	if rec.completed != nil {
		t := *rec.completed
		completed = &t
	}

	return domain.RunSnapshot{
		RunID:       rec.runID,
		VariantName: rec.variantName,
		Started:     rec.started,
		Completed:   completed,
		Cancelled:   rec.cancelled,
		Errors:      errs,
	}
}
