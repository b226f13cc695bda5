package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// EventStream writes server-sent events to one response.
type EventStream struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
	closed  bool
}

// NewEventStream wraps w.
func NewEventStream(w http.ResponseWriter, f http.Flusher) *EventStream {
	return &EventStream{
		writer:  w,
		flusher: f,
	}
}

// Send writes one named event with a JSON payload.
func (t *EventStream) Send(event string, data any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("stream is closed")
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE data: %w", err)
	}

	if err := t.writeLocked(fmt.Sprintf("event: %s\ndata: %s\n\n", event, dataJSON)); err != nil {
		return fmt.Errorf("failed to write SSE message: %w", err)
	}
	return nil
}

// SendComment writes one SSE comment frame (":" prefixed lines).
func (t *EventStream) SendComment(comment string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("stream is closed")
	}

	comment = strings.ReplaceAll(comment, "\r\n", "\n")
	comment = strings.ReplaceAll(comment, "\r", "\n")
	comment = strings.ReplaceAll(comment, "\n", "\n: ")
	if err := t.writeLocked(fmt.Sprintf(": %s\n\n", comment)); err != nil {
		return fmt.Errorf("failed to write SSE comment: %w", err)
	}
	return nil
}

func (t *EventStream) writeLocked(payload string) error {
	if _, err := t.writer.Write([]byte(payload)); err != nil {
		return err
	}
	t.flusher.Flush()
	return nil
}

// Close marks the stream closed; later writes fail.
func (t *EventStream) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}
