package visitor

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ormasoftchile/jetforge/internal/module"
)

// ConsoleSink prints lifecycle events as plain, human-readable lines —
// the sink an interactive `jetforge local`/`jetforge ssh` run uses by
// default, as opposed to JSONLSink's machine-readable trace.
type ConsoleSink struct {
	mu        sync.Mutex
	w         io.Writer
	checkMode bool
}

// NewConsoleSink wraps w (typically os.Stdout) as a sink.
func NewConsoleSink(w io.Writer, checkMode bool) *ConsoleSink {
	return &ConsoleSink{w: w, checkMode: checkMode}
}

func (s *ConsoleSink) IsCheckMode() bool { return s.checkMode }

func (s *ConsoleSink) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}

func (s *ConsoleSink) OnPlaybookStart(path string) {
	s.printf("PLAYBOOK [%s] ***********************\n", path)
}

func (s *ConsoleSink) OnPlaybookStop(path string) {
	s.printf("\n")
}

func (s *ConsoleSink) OnPlayStart(name string, hosts []string) {
	s.printf("PLAY [%s] ***** (%s)\n", name, strings.Join(hosts, ","))
}

func (s *ConsoleSink) OnPlayStop(name string) {
	s.printf("\n")
}

func (s *ConsoleSink) OnTaskStart(taskName, moduleName string, hosts []string) {
	s.printf("TASK [%s (%s)] *****\n", taskName, moduleName)
}

func (s *ConsoleSink) OnTaskStop(taskName string) {}

func (s *ConsoleSink) OnHostOK(host string, resp *module.Response) {
	s.printf("%-8s | %s => %s\n", string(resp.Status), host, resp.Message)
}

func (s *ConsoleSink) OnHostFailed(host string, resp *module.Response) {
	s.printf("FAILED   | %s => %s\n", host, resp.Message)
}

func (s *ConsoleSink) OnCommandOK(host string, outcome CommandOutcome) {
	if outcome.Command != nil {
		s.printf("%s | rc=%d | %s\n", host, outcome.Command.Rc, firstLine(outcome.Command.Stdout))
	}
}

func (s *ConsoleSink) OnCommandFailed(host string, outcome CommandOutcome) {
	if outcome.Command != nil {
		s.printf("%s | rc=%d (failed) | %s\n", host, outcome.Command.Rc, firstLine(outcome.Command.Stdout))
	}
}

func (s *ConsoleSink) OnHandlerNotified(host, handlerName string) {
	s.printf("%s | notified handler: %s\n", host, handlerName)
}

func (s *ConsoleSink) Debug(host, message string) {
	s.printf("%s | DEBUG: %s\n", host, message)
}

func (s *ConsoleSink) DebugLines(host string, messages []string) {
	for _, m := range messages {
		s.Debug(host, m)
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

var _ Visitor = (*ConsoleSink)(nil)
