package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"strconv"

	"github.com/evalboard/evalboard/internal/domain"
)

// Subprocess drives evaluation runs by spawning the evaluations binary and
// reading JSON-lines events from its stdout. Cancelling the session context
// kills the child process.
type Subprocess struct {
	binPath    string
	configPath string
	gatewayURL string
}

// NewSubprocess creates an engine that execs binPath for each run.
// configPath and gatewayURL are forwarded to the binary when non-empty.
func NewSubprocess(binPath, configPath, gatewayURL string) *Subprocess {
	return &Subprocess{
		binPath:    binPath,
		configPath: configPath,
		gatewayURL: gatewayURL,
	}
}

// Open starts the child process. A spawn failure surfaces from Open; stream
// and exit failures are reported through the session.
func (e *Subprocess) Open(ctx context.Context, req domain.StartEvaluationRequest) (*Session, error) {
	cmd := exec.CommandContext(ctx, e.binPath, e.buildArgs(req)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start evaluations process: %w", err)
	}

	sess := NewSession(16)

	// Drain stderr so the child never blocks on a full pipe; the engine's
	// own diagnostics are only worth a log line.
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Printf("WARN: evaluations stderr: %s", scanner.Text())
		}
	}()

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}

			var ev domain.EngineEvent
			if err := json.Unmarshal([]byte(line), &ev); err != nil {
				log.Printf("WARN: dropping malformed engine event line: %v", err)
				continue
			}
			sess.Emit(ev)
		}
		scanErr := scanner.Err()

		if err := cmd.Wait(); err != nil {
			sess.Fail(fmt.Errorf("evaluations process exited: %w", err))
			return
		}
		if scanErr != nil {
			sess.Fail(fmt.Errorf("failed to read evaluations output: %w", scanErr))
			return
		}
		sess.CloseSend()
	}()

	return sess, nil
}

// buildArgs maps the run parameters onto the evaluations binary's flags.
func (e *Subprocess) buildArgs(req domain.StartEvaluationRequest) []string {
	args := []string{
		"--name", req.EvaluationName,
		"--dataset", req.DatasetName,
		"--variant", req.VariantName,
		"--concurrency", strconv.Itoa(req.Concurrency),
		"--format", "jsonl",
	}
	if req.CacheMode != "" {
		args = append(args, "--cache-mode", string(req.CacheMode))
	}
	if req.MaxDatapoints > 0 {
		args = append(args, "--max-datapoints", strconv.Itoa(req.MaxDatapoints))
	}
	for evaluator, target := range req.PrecisionTargets {
		args = append(args,
			"--precision-target",
			fmt.Sprintf("%s=%s", evaluator, strconv.FormatFloat(target, 'f', -1, 64)))
	}
	if e.configPath != "" {
		args = append(args, "--config-file", e.configPath)
	}
	if e.gatewayURL != "" {
		args = append(args, "--gateway-url", e.gatewayURL)
	}
	return args
}
