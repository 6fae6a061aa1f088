package visitor

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ormasoftchile/jetforge/internal/module"
)

// EventType enumerates every event JSONLSink can emit. Grounded on the
// teacher's pkg/kernel/trace/trace.go EventType enumeration.
type EventType string

const (
	EventPlaybookStart    EventType = "playbook_start"
	EventPlaybookStop     EventType = "playbook_stop"
	EventPlayStart        EventType = "play_start"
	EventPlayStop         EventType = "play_stop"
	EventTaskStart        EventType = "task_start"
	EventTaskStop         EventType = "task_stop"
	EventHostOK           EventType = "host_ok"
	EventHostFailed       EventType = "host_failed"
	EventCommandOK        EventType = "command_ok"
	EventCommandFailed    EventType = "command_failed"
	EventHandlerNotified  EventType = "handler_notified"
	EventDebug            EventType = "debug"
)

// Event is one line of the append-only JSONL trace stream.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Host      string         `json:"host,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// JSONLSink writes every lifecycle event to an append-only JSONL stream,
// redacting configured secret values before they reach disk. Grounded on
// pkg/kernel/trace/trace.go's Writer.
type JSONLSink struct {
	mu         sync.Mutex
	enc        *json.Encoder
	runID      string
	checkMode  bool
	secretVars []string
}

// NewJSONLSink wraps an io.Writer (typically an append-only file) as a sink.
func NewJSONLSink(w io.Writer, runID string, checkMode bool) *JSONLSink {
	return &JSONLSink{enc: json.NewEncoder(w), runID: runID, checkMode: checkMode}
}

// NewJSONLFileSink opens path for append and wraps it as a sink.
func NewJSONLFileSink(path, runID string, checkMode bool) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return NewJSONLSink(f, runID, checkMode), nil
}

// SetSecrets configures which ENV_* variable values get redacted from
// messages and command output before they are written.
func (s *JSONLSink) SetSecrets(values []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secretVars = values
}

func (s *JSONLSink) redact(msg string) string {
	for _, v := range s.secretVars {
		if v != "" {
			msg = strings.ReplaceAll(msg, v, "<REDACTED>")
		}
	}
	return msg
}

func (s *JSONLSink) emit(evtType EventType, host string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(Event{Type: evtType, Timestamp: time.Now().UTC(), RunID: s.runID, Host: host, Data: data})
}

func (s *JSONLSink) IsCheckMode() bool { return s.checkMode }

func (s *JSONLSink) OnPlaybookStart(path string) {
	s.emit(EventPlaybookStart, "", map[string]any{"path": path})
}

func (s *JSONLSink) OnPlaybookStop(path string) {
	s.emit(EventPlaybookStop, "", map[string]any{"path": path})
}

func (s *JSONLSink) OnPlayStart(name string, hosts []string) {
	s.emit(EventPlayStart, "", map[string]any{"name": name, "hosts": hosts})
}

func (s *JSONLSink) OnPlayStop(name string) {
	s.emit(EventPlayStop, "", map[string]any{"name": name})
}

func (s *JSONLSink) OnTaskStart(taskName, moduleName string, hosts []string) {
	s.emit(EventTaskStart, "", map[string]any{"task": taskName, "module": moduleName, "hosts": hosts})
}

func (s *JSONLSink) OnTaskStop(taskName string) {
	s.emit(EventTaskStop, "", map[string]any{"task": taskName})
}

func (s *JSONLSink) OnHostOK(host string, resp *module.Response) {
	s.emit(EventHostOK, host, map[string]any{"status": string(resp.Status), "message": s.redact(resp.Message)})
}

func (s *JSONLSink) OnHostFailed(host string, resp *module.Response) {
	s.emit(EventHostFailed, host, map[string]any{"status": string(resp.Status), "message": s.redact(resp.Message)})
}

func (s *JSONLSink) OnCommandOK(host string, outcome CommandOutcome) {
	s.emit(EventCommandOK, host, commandData(s, outcome))
}

func (s *JSONLSink) OnCommandFailed(host string, outcome CommandOutcome) {
	s.emit(EventCommandFailed, host, commandData(s, outcome))
}

func commandData(s *JSONLSink, outcome CommandOutcome) map[string]any {
	data := map[string]any{}
	if outcome.Command != nil {
		data["cmd"] = s.redact(outcome.Command.Cmd)
		data["stdout"] = s.redact(outcome.Command.Stdout)
		data["rc"] = outcome.Command.Rc
	}
	return data
}

func (s *JSONLSink) OnHandlerNotified(host, handlerName string) {
	s.emit(EventHandlerNotified, host, map[string]any{"handler": handlerName})
}

func (s *JSONLSink) Debug(host, message string) {
	s.emit(EventDebug, host, map[string]any{"message": s.redact(message)})
}

func (s *JSONLSink) DebugLines(host string, messages []string) {
	redacted := make([]string, len(messages))
	for i, m := range messages {
		redacted[i] = s.redact(m)
	}
	s.emit(EventDebug, host, map[string]any{"messages": redacted})
}

var _ Visitor = (*JSONLSink)(nil)
