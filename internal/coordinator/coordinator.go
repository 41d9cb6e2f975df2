// Package coordinator launches evaluation runs against the engine, folds
// their event streams into the run registry, and answers status and cancel
// requests.
package coordinator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/evalboard/evalboard/internal/domain"
	"github.com/evalboard/evalboard/internal/engine"
	"github.com/evalboard/evalboard/internal/registry"
	"github.com/evalboard/evalboard/policy"
)

// Coordinator ties an evaluation engine to the run registry.
type Coordinator struct {
	registry     *registry.RunRegistry
	engine       engine.Engine
	policyEngine *policy.Engine
	startTimeout time.Duration
}

// New creates a coordinator. policyEngine may be nil to skip launch gating.
func New(reg *registry.RunRegistry, eng engine.Engine, policyEngine *policy.Engine, startTimeout time.Duration) *Coordinator {
	return &Coordinator{
		registry:     reg,
		engine:       eng,
		policyEngine: policyEngine,
		startTimeout: startTimeout,
	}
}

type startOutcome struct {
	result domain.StartResult
	err    error
}

// StartEvaluation opens an engine session and blocks until the engine
// acknowledges the run (its start event carries the engine-assigned run id
// and datapoint count) or fails before starting. This is the only blocking
// call the coordinator exposes; event folding continues in the background
// after it returns.
func (c *Coordinator) StartEvaluation(ctx context.Context, req domain.StartEvaluationRequest) (domain.StartResult, error) {
	if req.EvaluationName == "" {
		return domain.StartResult{}, fmt.Errorf("evaluation_name is required")
	}
	if req.DatasetName == "" {
		return domain.StartResult{}, fmt.Errorf("dataset_name is required")
	}
	if req.VariantName == "" {
		return domain.StartResult{}, fmt.Errorf("variant_name is required")
	}
	if req.Concurrency <= 0 {
		req.Concurrency = 1
	}
	if req.CacheMode == "" {
		req.CacheMode = domain.CacheModeOn
	}

	if c.policyEngine != nil {
		decision, reason, err := c.policyEngine.Evaluate(ctx, map[string]interface{}{
			"evaluation_name": req.EvaluationName,
			"dataset_name":    req.DatasetName,
			"variant_name":    req.VariantName,
			"concurrency":     req.Concurrency,
			"cache_mode":      string(req.CacheMode),
		})
		if err != nil {
			return domain.StartResult{}, fmt.Errorf("launch policy evaluation failed: %w", err)
		}
		if decision == "block" {
			return domain.StartResult{}, fmt.Errorf("launch blocked by policy: %s", reason)
		}
	}

	// The run outlives the caller's request; the session gets its own
	// context, cancelled only through the registry's cancel capability or
	// a pre-start failure.
	sessCtx, cancel := context.WithCancel(context.Background())
	sess, err := c.engine.Open(sessCtx, req)
	if err != nil {
		cancel()
		return domain.StartResult{}, fmt.Errorf("failed to open evaluation session: %w", err)
	}

	started := make(chan startOutcome, 1)
	go c.consumeEvents(sess, req.VariantName, cancel, started)

	timer := time.NewTimer(c.startTimeout)
	defer timer.Stop()

	select {
	case out := <-started:
		if out.err != nil {
			cancel()
			return domain.StartResult{}, out.err
		}
		return out.result, nil
	case <-ctx.Done():
		cancel()
		return domain.StartResult{}, fmt.Errorf("start request aborted: %w", ctx.Err())
	case <-timer.C:
		cancel()
		return domain.StartResult{}, fmt.Errorf("timed out waiting for evaluation start after %s", c.startTimeout)
	}
}

// GetRunningEvaluation returns a snapshot of the run, or false if unknown.
func (c *Coordinator) GetRunningEvaluation(runID string) (domain.RunSnapshot, bool) {
	return c.registry.Get(runID)
}

// CancelEvaluation requests best-effort cancellation of a run.
func (c *Coordinator) CancelEvaluation(runID string) domain.CancelResult {
	return c.registry.Cancel(runID)
}

// consumeEvents folds one session's event stream into the registry, in the
// order the engine emits it. Before the start event the run has no record;
// the first terminal condition in that window resolves the start outcome as
// a failure instead. After start, terminal conditions mark the record
// completed and everything later is absorbed as a no-op by the registry.
func (c *Coordinator) consumeEvents(sess *engine.Session, variantName string, cancel context.CancelFunc, started chan<- startOutcome) {
	runID := ""
	resolve := func(out startOutcome) {
		if started != nil {
			started <- out
			started = nil
		}
	}

	for ev := range sess.Events() {
		switch ev.Type {
		case domain.EngineEventStart:
			data, err := engine.ParseStartEvent(ev.Data)
			if err != nil {
				log.Printf("WARN: dropping malformed start event: %v", err)
				continue
			}
			if runID != "" {
				log.Printf("WARN: duplicate start event for run %s, ignoring", runID)
				continue
			}
			runID = data.RunID
			c.registry.Create(runID, variantName, cancel)
			resolve(startOutcome{result: domain.StartResult{
				RunID:         data.RunID,
				NumDatapoints: data.NumDatapoints,
			}})

		case domain.EngineEventError:
			data, err := engine.ParseErrorEvent(ev.Data)
			if err != nil {
				log.Printf("WARN: dropping malformed error event: %v", err)
				continue
			}
			if runID == "" {
				log.Printf("WARN: dropping error event received before start")
				continue
			}
			c.registry.RecordError(runID, domain.EvaluationError{
				DatapointID: data.DatapointID,
				Message:     data.Message,
			})

		case domain.EngineEventFatalError:
			msg := "evaluation failed"
			if data, err := engine.ParseFatalErrorEvent(ev.Data); err == nil && data.Message != "" {
				msg = data.Message
			}
			if runID == "" {
				resolve(startOutcome{err: fmt.Errorf("evaluation failed before start: %s", msg)})
				continue
			}
			c.registry.RecordError(runID, domain.EvaluationError{Message: msg})
			c.registry.Complete(runID)

		case domain.EngineEventComplete:
			if runID != "" {
				c.registry.Complete(runID)
			}

		case domain.EngineEventSuccess:
			// Per-datapoint results are consumed downstream, not here.

		default:
			log.Printf("WARN: unknown engine event type %q", ev.Type)
		}
	}

	streamErr := sess.Err()
	switch {
	case streamErr != nil && runID == "":
		resolve(startOutcome{err: fmt.Errorf("evaluation stream failed before start: %w", streamErr)})
	case streamErr != nil:
		c.registry.RecordError(runID, domain.EvaluationError{Message: streamErr.Error()})
		c.registry.Complete(runID)
	case runID == "":
		resolve(startOutcome{err: fmt.Errorf("evaluation stream ended before start event")})
	default:
		// Clean process exit without a complete event is still terminal.
		c.registry.Complete(runID)
	}
}
