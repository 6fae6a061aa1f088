package modules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ormasoftchile/jetforge/internal/connection"
	pctx "github.com/ormasoftchile/jetforge/internal/context"
	"github.com/ormasoftchile/jetforge/internal/fsm"
	"github.com/ormasoftchile/jetforge/internal/handlers"
	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/visitor"
)

// fakeSink is a minimal Visitor recording outcomes, for module tests that
// don't need ConsoleSink's formatting.
type fakeSink struct {
	checkMode bool
}

func (f *fakeSink) OnPlaybookStart(string)                                {}
func (f *fakeSink) OnPlaybookStop(string)                                 {}
func (f *fakeSink) OnPlayStart(string, []string)                          {}
func (f *fakeSink) OnPlayStop(string)                                     {}
func (f *fakeSink) OnTaskStart(string, string, []string)                  {}
func (f *fakeSink) OnTaskStop(string)                                     {}
func (f *fakeSink) OnHostOK(string, *module.Response)                     {}
func (f *fakeSink) OnHostFailed(string, *module.Response)                 {}
func (f *fakeSink) OnCommandOK(string, visitor.CommandOutcome)            {}
func (f *fakeSink) OnCommandFailed(string, visitor.CommandOutcome)        {}
func (f *fakeSink) OnHandlerNotified(string, string)                      {}
func (f *fakeSink) Debug(string, string)                                  {}
func (f *fakeSink) DebugLines(string, []string)                           {}
func (f *fakeSink) IsCheckMode() bool                                     { return f.checkMode }

func runFileTask(t *testing.T, path string, attrs map[string]any) fsm.Outcome {
	t.Helper()
	inv := inventory.New()
	host := inv.FindOrCreateHost("testhost")
	pc := pctx.New(inv)
	pc.BeginPlay("p1", nil, []string{"testhost"})

	factory := connection.NewFactory(connection.KindLocal, nil)
	v := &fakeSink{}

	args := map[string]any{"path": path}
	if attrs != nil {
		args["attributes"] = attrs
	}
	return fsm.RunHostTask(context.Background(), pc, v, factory, host, File{}, fsm.TaskSpec{
		Mode: handlers.NormalTasks,
		Args: args,
	})
}

func TestFileModuleCreatesAbsentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")

	outcome := runFileTask(t, path, nil)
	if outcome.Status != module.IsCreated {
		t.Fatalf("Status = %v, message = %q, want IsCreated", outcome.Status, outcome.Message)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file was not created on disk: %v", err)
	}
}

func TestFileModuleIsIdempotentOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")

	if outcome := runFileTask(t, path, nil); outcome.Status != module.IsCreated {
		t.Fatalf("first run: Status = %v, want IsCreated", outcome.Status)
	}
	outcome := runFileTask(t, path, nil)
	if outcome.Status != module.IsMatched {
		t.Fatalf("second run: Status = %v, message = %q, want IsMatched", outcome.Status, outcome.Message)
	}
}

func TestFileModuleReconcilesMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	outcome := runFileTask(t, path, map[string]any{"mode": "0644"})
	if outcome.Status != module.IsModified {
		t.Fatalf("Status = %v, message = %q, want IsModified", outcome.Status, outcome.Message)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %o, want 0644", info.Mode().Perm())
	}
}

func TestFileModuleFailsAgainstADirectory(t *testing.T) {
	dir := t.TempDir()

	outcome := runFileTask(t, dir, nil)
	if outcome.Status != module.Failed {
		t.Fatalf("Status = %v, want Failed when path is a directory", outcome.Status)
	}
}
