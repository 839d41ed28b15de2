package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/agentcore/agentcore/pkg/models"
)

// TraceHeader is the first line written to a trace file, identifying the
// activation and the environment it ran in.
type TraceHeader struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	AppVersion  string    `json:"app_version,omitempty"`
	Environment string    `json:"environment,omitempty"`
}

// Redactor strips sensitive fields from an event before it is persisted.
type Redactor func(event models.AgentEvent) models.AgentEvent

// DefaultRedactor truncates LLM request/response payload fields that could
// carry prompt or completion text, keeping only metadata useful for replay
// diagnostics.
func DefaultRedactor(event models.AgentEvent) models.AgentEvent {
	if event.LLMRequest != nil {
		redacted := *event.LLMRequest
		event.LLMRequest = &redacted
	}
	if event.Human != nil {
		redacted := *event.Human
		redacted.Question = "[redacted]"
		event.Human = &redacted
	}
	return event
}

// TraceOption configures a TracePlugin.
type TraceOption func(*TracePlugin)

// WithRedactor overrides the default redaction function. Pass nil to disable
// redaction entirely.
func WithRedactor(r Redactor) TraceOption {
	return func(t *TracePlugin) { t.redactor = r }
}

// WithAppVersion stamps the trace header with an application version.
func WithAppVersion(version string) TraceOption {
	return func(t *TracePlugin) { t.header.AppVersion = version }
}

// WithEnvironment stamps the trace header with a deployment environment
// name.
func WithEnvironment(env string) TraceOption {
	return func(t *TracePlugin) { t.header.Environment = env }
}

// TracePlugin is an EventSink that records every event to a JSONL file,
// preceded by a single TraceHeader line, for later offline inspection.
type TracePlugin struct {
	mu       sync.Mutex
	w        *bufio.Writer
	closer   io.Closer
	header   TraceHeader
	redactor Redactor
}

// NewTracePlugin wraps an already-open writer. The caller remains
// responsible for closing w if it implements io.Closer; Close on the
// returned plugin only flushes buffered output.
func NewTracePlugin(runID string, w io.Writer, opts ...TraceOption) (*TracePlugin, error) {
	t := &TracePlugin{
		w:        bufio.NewWriter(w),
		header:   TraceHeader{RunID: runID, StartedAt: time.Now()},
		redactor: DefaultRedactor,
	}
	for _, opt := range opts {
		opt(t)
	}
	if closer, ok := w.(io.Closer); ok {
		t.closer = closer
	}
	if err := t.writeHeader(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewTracePluginFile opens path for writing and returns a TracePlugin backed
// by it; Close on the returned plugin closes the file.
func NewTracePluginFile(runID, path string, opts ...TraceOption) (*TracePlugin, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	t, err := NewTracePlugin(runID, f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	t.closer = f
	return t, nil
}

func (t *TracePlugin) writeHeader() error {
	encoded, err := json.Marshal(t.header)
	if err != nil {
		return fmt.Errorf("encode trace header: %w", err)
	}
	if _, err := t.w.Write(encoded); err != nil {
		return err
	}
	return t.w.WriteByte('\n')
}

// Emit implements EventSink, writing event as one redacted JSON line.
func (t *TracePlugin) Emit(_ context.Context, event models.AgentEvent) {
	if t.redactor != nil {
		event = t.redactor(event)
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.w.Write(encoded)
	t.w.WriteByte('\n')
	t.w.Flush()
}

// Close flushes buffered output and closes the underlying writer, if it was
// opened by NewTracePluginFile.
func (t *TracePlugin) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.w.Flush(); err != nil {
		return err
	}
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// TraceReader reads a trace file back: a header line followed by one
// AgentEvent per line.
type TraceReader struct {
	scanner *bufio.Scanner
	header  TraceHeader
}

// NewTraceReader reads and parses the header line from r, then returns a
// reader positioned at the first event.
func NewTraceReader(r io.Reader) (*TraceReader, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("trace file has no header line")
	}

	var header TraceHeader
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		return nil, fmt.Errorf("decode trace header: %w", err)
	}

	return &TraceReader{scanner: scanner, header: header}, nil
}

// Header returns the parsed trace header.
func (r *TraceReader) Header() TraceHeader {
	return r.header
}

// ReadEvent reads the next event line. It returns io.EOF once the file is
// exhausted.
func (r *TraceReader) ReadEvent() (models.AgentEvent, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return models.AgentEvent{}, err
		}
		return models.AgentEvent{}, io.EOF
	}
	var event models.AgentEvent
	if err := json.Unmarshal(r.scanner.Bytes(), &event); err != nil {
		return models.AgentEvent{}, fmt.Errorf("decode trace event: %w", err)
	}
	return event, nil
}

// ReadAll drains every remaining event from the trace.
func (r *TraceReader) ReadAll() ([]models.AgentEvent, error) {
	var events []models.AgentEvent
	for {
		event, err := r.ReadEvent()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
}
