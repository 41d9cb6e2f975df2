package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/evalboard/evalboard/internal/domain"
)

// SSEClient drives evaluation runs hosted by a remote gateway that streams
// progress as server-sent events. The SSE event name carries the variant tag
// and the data line carries the JSON payload.
type SSEClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewSSEClient creates an engine client for the given gateway base URL.
func NewSSEClient(baseURL string) *SSEClient {
	return &SSEClient{
		baseURL: baseURL,
		// No client timeout: evaluation streams are long-lived and are
		// bounded by the session context instead.
		httpClient: &http.Client{},
	}
}

// Open POSTs the run parameters and streams the response events into a
// session. A connection or non-200 failure surfaces from Open directly;
// anything after that is reported through the session.
func (c *SSEClient) Open(ctx context.Context, req domain.StartEvaluationRequest) (*Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/evaluations/run"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to open evaluation session: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("evaluation gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	sess := NewSession(16)
	go func() {
		defer resp.Body.Close()
		if err := parseSSE(resp.Body, sess); err != nil {
			sess.Fail(err)
			return
		}
		sess.CloseSend()
	}()
	return sess, nil
}

// parseSSE reads an SSE stream and emits each event into the session.
func parseSSE(reader io.Reader, sess *Session) error {
	scanner := bufio.NewScanner(reader)
	var name, data string

	flush := func() {
		if name == "" && data == "" {
			return
		}
		sess.Emit(domain.EngineEvent{
			Type: domain.EngineEventType(name),
			Data: json.RawMessage(data),
		})
		name, data = "", ""
	}

	for scanner.Scan() {
		line := scanner.Text()

		// Empty line marks end of event
		if line == "" {
			flush()
			continue
		}

		if strings.HasPrefix(line, "event:") {
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		} else if strings.HasPrefix(line, "data:") {
			chunk := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data != "" {
				data += "\n" + chunk
			} else {
				data = chunk
			}
		}
		// Ignore comments (lines starting with :) and other fields
	}

	flush()
	return scanner.Err()
}
