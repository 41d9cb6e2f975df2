package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evalboard/evalboard/internal/domain"
)

func TestSSEClientOpenParsesEventStream(t *testing.T) {
	var gotReq domain.StartEvaluationRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/evaluations/run" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: start\ndata: {\"run_id\":\"run-1\",\"num_datapoints\":7}\n\n")
		fmt.Fprint(w, "event: error\ndata: {\"datapoint_id\":\"dp-1\",\"message\":\"bad output\"}\n\n")
		fmt.Fprint(w, "event: complete\ndata: {}\n\n")
	}))
	defer server.Close()

	client := NewSSEClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req := domain.StartEvaluationRequest{
		EvaluationName: "haiku-quality",
		DatasetName:    "haiku-examples",
		VariantName:    "gpt_variant",
		Concurrency:    2,
		CacheMode:      domain.CacheModeOn,
	}

	sess, err := client.Open(ctx, req)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	var events []domain.EngineEvent
	for ev := range sess.Events() {
		events = append(events, ev)
	}
	if err := sess.Err(); err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}

	if gotReq.EvaluationName != req.EvaluationName || gotReq.Concurrency != req.Concurrency {
		t.Fatalf("request not forwarded: %+v", gotReq)
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if events[0].Type != domain.EngineEventStart {
		t.Fatalf("expected start first, got %s", events[0].Type)
	}
	start, err := ParseStartEvent(events[0].Data)
	if err != nil {
		t.Fatalf("ParseStartEvent: %v", err)
	}
	if start.RunID != "run-1" || start.NumDatapoints != 7 {
		t.Fatalf("unexpected start data: %+v", start)
	}
	if events[1].Type != domain.EngineEventError || events[2].Type != domain.EngineEventComplete {
		t.Fatalf("unexpected event order: %+v", events)
	}
}

func TestSSEClientOpenRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such evaluation", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewSSEClient(server.URL)
	if _, err := client.Open(context.Background(), domain.StartEvaluationRequest{}); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

func TestSSEClientMultilineData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		// Data split over two lines joins with a newline per the SSE spec.
		fmt.Fprint(w, "event: fatal_error\ndata: {\"message\":\ndata: \"boom\"}\n\n")
	}))
	defer server.Close()

	client := NewSSEClient(server.URL)
	sess, err := client.Open(context.Background(), domain.StartEvaluationRequest{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	var events []domain.EngineEvent
	for ev := range sess.Events() {
		events = append(events, ev)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	fatal, err := ParseFatalErrorEvent(events[0].Data)
	if err != nil {
		t.Fatalf("ParseFatalErrorEvent: %v", err)
	}
	if fatal.Message != "boom" {
		t.Fatalf("unexpected message: %q", fatal.Message)
	}
}
