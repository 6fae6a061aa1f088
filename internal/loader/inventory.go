package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ormasoftchile/jetforge/internal/errs"
	"github.com/ormasoftchile/jetforge/internal/inventory"
	"gopkg.in/yaml.v3"
)

// groupFileDoc is the YAML shape of one groups/<name>.yml file.
type groupFileDoc struct {
	Hosts     []string `yaml:"hosts,omitempty"`
	Subgroups []string `yaml:"subgroups,omitempty"`
}

// dynamicGroupDoc mirrors groupFileDoc for the JSON a dynamic (executable)
// inventory source emits on stdout.
type dynamicGroupDoc struct {
	Hosts     []string       `json:"hosts"`
	Subgroups []string       `json:"subgroups"`
	Vars      map[string]any `json:"vars"`
}

type dynamicDoc struct {
	Groups   map[string]dynamicGroupDoc  `json:"groups"`
	HostVars map[string]map[string]any `json:"host_vars"`
}

// LoadInventory merges one or more inventory sources — static directories
// or dynamic executables — into a single Inventory and runs the required
// group-cycle check before returning it.
func LoadInventory(paths []string) (*inventory.Inventory, error) {
	inv := inventory.New()
	for _, path := range paths {
		if err := loadOneSource(inv, path); err != nil {
			return nil, err
		}
	}
	if err := inv.Validate(); err != nil {
		return nil, &errs.ParseError{Phase: "domain", Err: err}
	}
	return inv, nil
}

func loadOneSource(inv *inventory.Inventory, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &errs.ParseError{Phase: "structural", Path: path, Err: err}
	}
	if info.IsDir() {
		return loadStaticInventory(inv, path)
	}
	if info.Mode()&0o111 != 0 {
		return loadDynamicInventory(inv, path)
	}
	return &errs.ParseError{Phase: "structural", Path: path, Err: fmt.Errorf("inventory source is neither a directory nor an executable")}
}

func loadStaticInventory(inv *inventory.Inventory, dir string) error {
	groupsDir := filepath.Join(dir, "groups")
	entries, err := os.ReadDir(groupsDir)
	if err != nil {
		return &errs.ParseError{Phase: "structural", Path: groupsDir, Err: err}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := baseNameNoExt(entry.Name())
		path := filepath.Join(groupsDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return &errs.ParseError{Phase: "structural", Path: path, Err: err}
		}
		var doc groupFileDoc
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return &errs.ParseError{Phase: "structural", Path: path, Err: err}
		}

		group := inv.FindOrCreateGroup(name)
		for _, h := range doc.Hosts {
			inv.FindOrCreateHost(h)
			group.AddHost(h)
		}
		for _, sub := range doc.Subgroups {
			child := inv.FindOrCreateGroup(sub)
			group.AddChildGroup(child)
		}
	}

	if err := loadVarsDir(inv, filepath.Join(dir, "group_vars"), func(name string, vars map[string]any) {
		inv.FindOrCreateGroup(name).SetVars(vars)
	}); err != nil {
		return err
	}
	if err := loadVarsDir(inv, filepath.Join(dir, "host_vars"), func(name string, vars map[string]any) {
		host := inv.FindOrCreateHost(name)
		for k, v := range vars {
			host.SetVar(k, v)
		}
	}); err != nil {
		return err
	}
	return nil
}

func loadVarsDir(_ *inventory.Inventory, dir string, apply func(name string, vars map[string]any)) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &errs.ParseError{Phase: "structural", Path: dir, Err: err}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := baseNameNoExt(entry.Name())
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return &errs.ParseError{Phase: "structural", Path: path, Err: err}
		}
		var vars map[string]any
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&vars); err != nil {
			return &errs.ParseError{Phase: "structural", Path: path, Err: err}
		}
		apply(name, vars)
	}
	return nil
}

// loadDynamicInventory runs an executable inventory source and parses its
// stdout as the same groups shape a static directory produces, plus an
// optional host_vars block.
func loadDynamicInventory(inv *inventory.Inventory, path string) error {
	cmd := exec.Command(path, "--list")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &errs.ParseError{Phase: "structural", Path: path, Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))}
	}

	var doc dynamicDoc
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		return &errs.ParseError{Phase: "structural", Path: path, Err: err}
	}

	for name, g := range doc.Groups {
		group := inv.FindOrCreateGroup(name)
		for _, h := range g.Hosts {
			inv.FindOrCreateHost(h)
			group.AddHost(h)
		}
		for _, sub := range g.Subgroups {
			child := inv.FindOrCreateGroup(sub)
			group.AddChildGroup(child)
		}
		if g.Vars != nil {
			group.SetVars(g.Vars)
		}
	}
	for name, vars := range doc.HostVars {
		host := inv.FindOrCreateHost(name)
		for k, v := range vars {
			host.SetVar(k, v)
		}
	}
	return nil
}

func baseNameNoExt(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext)
}
