package registry

import (
	"log"
	"time"
)

// StartPeriodicCleanup enables the background sweep. The janitor timer is not
// held while the registry is empty: it starts (with an immediate sweep) the
// next time a record is created and stops again once the registry drains.
// The returned func disables cleanup and stops any running janitor.
func (r *RunRegistry) StartPeriodicCleanup(interval time.Duration) func() {
	r.mu.Lock()
	r.sweepInterval = interval
	r.cleanupEnabled = true
	r.maybeStartJanitorLocked()
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.cleanupEnabled = false
		r.stopJanitorLocked()
	}
}

// Sweep removes stale records: completed runs past the completed-retention
// window, and never-completed runs past the running-retention window (the
// engine went away without reporting a terminal event). Returns the number
// of records removed.
func (r *RunRegistry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for runID, rec := range r.runs {
		switch {
		case rec.completed != nil && now.Sub(*rec.completed) > r.completedRetention:
			delete(r.runs, runID)
			removed++
		case rec.completed == nil && now.Sub(rec.started) > r.runningRetention:
			delete(r.runs, runID)
			removed++
		}
	}

	if removed > 0 {
		log.Printf("INFO: swept %d stale evaluation run(s), %d remaining", removed, len(r.runs))
	}
	r.maybeStopJanitorLocked()
	return removed
}

// maybeStartJanitorLocked starts the janitor goroutine if cleanup is enabled,
// the registry is non-empty and no janitor is running. Caller holds r.mu.
func (r *RunRegistry) maybeStartJanitorLocked() {
	if !r.cleanupEnabled || r.janitorStop != nil || len(r.runs) == 0 {
		return
	}
	stop := make(chan struct{})
	r.janitorStop = stop
	go r.janitor(stop)
}

// maybeStopJanitorLocked stops the janitor once the registry is empty.
// Caller holds r.mu.
func (r *RunRegistry) maybeStopJanitorLocked() {
	if r.janitorStop != nil && len(r.runs) == 0 {
		r.stopJanitorLocked()
	}
}

func (r *RunRegistry) stopJanitorLocked() {
	if r.janitorStop != nil {
		close(r.janitorStop)
		r.janitorStop = nil
	}
}

func (r *RunRegistry) janitor(stop chan struct{}) {
	// Sweep right away; the first interval should not delay eviction of
	// records that were already stale when the registry became non-empty.
	r.Sweep(time.Now())

	r.mu.Lock()
	interval := r.sweepInterval
	r.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.Sweep(time.Now())
		}
	}
}
