// Package loader parses playbook and inventory YAML documents from disk
// into the in-memory shapes the rest of the engine consumes. Grounded on
// pkg/schema/schema.go's LoadFile / Load strict-decode idiom.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ormasoftchile/jetforge/internal/errs"
	"gopkg.in/yaml.v3"
)

// Task is one playbook task or handler entry: a tagged object whose one
// non-reserved key names the module and carries its raw (pre-template)
// argument map. That argument map is the module's own concern — each
// module's Evaluate leg pulls its own nested `with`/`and` blocks out of
// Args, the way internal/modules/logic.go's evaluatePreLogic/
// evaluatePostLogic do; the loader does not special-case them.
type Task struct {
	Name   string
	Module string
	Args   map[string]any
}

// UnmarshalYAML decodes a task's generic mapping and isolates its single
// module tag, rejecting zero or more than one — the structural phase of
// §6.3's 3-phase pipeline for this shape.
func (t *Task) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if name, ok := raw["name"].(string); ok {
		t.Name = name
	}
	delete(raw, "name")

	if len(raw) != 1 {
		return fmt.Errorf("task must carry exactly one module tag, found %d: %v", len(raw), keys(raw))
	}
	for tag, body := range raw {
		t.Module = tag
		switch b := body.(type) {
		case map[string]any:
			t.Args = b
		case nil:
			t.Args = map[string]any{}
		default:
			return fmt.Errorf("module %q body must be a mapping, got %T", tag, body)
		}
	}
	return nil
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Play is one bound of tasks + handlers applied to a host set derived
// from one or more groups.
type Play struct {
	Name      string         `yaml:"name"`
	Groups    []string       `yaml:"groups"`
	Roles     []string       `yaml:"roles,omitempty"`
	Defaults  map[string]any `yaml:"defaults,omitempty"`
	Vars      map[string]any `yaml:"vars,omitempty"`
	VarsFiles []string       `yaml:"vars_files,omitempty"`
	SSHUser   string         `yaml:"ssh_user,omitempty"`
	SSHPort   int            `yaml:"ssh_port,omitempty"`
	Tasks     []Task         `yaml:"tasks,omitempty"`
	Handlers  []Task         `yaml:"handlers,omitempty"`
	BatchSize int            `yaml:"batch_size,omitempty"`
}

// PlaybookFile is one loaded playbook document: its ordered plays plus
// the path/directory they were loaded from, needed to resolve roles/,
// templates/, and files/ relative paths.
type PlaybookFile struct {
	Path  string
	Dir   string
	Plays []Play
}

// LoadPlaybooks strict-decodes every path in paths (already split from a
// colon-separated --playbook flag) into a PlaybookFile.
func LoadPlaybooks(paths []string) ([]PlaybookFile, error) {
	out := make([]PlaybookFile, 0, len(paths))
	for _, path := range paths {
		pb, err := loadPlaybookFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, pb)
	}
	return out, nil
}

func loadPlaybookFile(path string) (PlaybookFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlaybookFile{}, &errs.ParseError{Phase: "structural", Path: path, Err: err}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var plays []Play
	if err := dec.Decode(&plays); err != nil {
		return PlaybookFile{}, &errs.ParseError{Phase: "structural", Path: path, Err: err}
	}
	for i := range plays {
		if plays[i].Groups == nil && len(plays[i].Roles) == 0 {
			return PlaybookFile{}, &errs.ParseError{Phase: "domain", Path: path, Err: fmt.Errorf("play %q: groups is required", plays[i].Name)}
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return PlaybookFile{Path: abs, Dir: filepath.Dir(abs), Plays: plays}, nil
}
