package loader

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/ormasoftchile/jetforge/internal/errs"
	"gopkg.in/yaml.v3"
)

// Role is a named bundle of defaults, tasks, and handlers loaded from
// roles/<name>/ beneath a playbook's directory. The playbook runner runs
// a role's tasks and then queues its handlers; Defaults is loaded but is
// not merged into any host's variables.
type Role struct {
	Name     string
	Defaults map[string]any
	Tasks    []Task
	Handlers []Task
}

// LoadRole reads roles/<name>/{defaults,tasks,handlers}.yml beneath
// playbookDir. Any of the three files may be absent; an absent file
// contributes nothing rather than erroring, since a role that only sets
// defaults (or only runs tasks) is legitimate.
func LoadRole(playbookDir, name string) (Role, error) {
	role := Role{Name: name}
	dir := filepath.Join(playbookDir, "roles", name)

	defaults, err := readVarsFile(filepath.Join(dir, "defaults.yml"))
	if err != nil {
		return role, err
	}
	role.Defaults = defaults

	tasks, err := readTasksFile(filepath.Join(dir, "tasks.yml"))
	if err != nil {
		return role, err
	}
	role.Tasks = tasks

	handlers, err := readTasksFile(filepath.Join(dir, "handlers.yml"))
	if err != nil {
		return role, err
	}
	role.Handlers = handlers

	return role, nil
}

func readVarsFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &errs.ParseError{Phase: "structural", Path: path, Err: err}
	}
	var vars map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&vars); err != nil {
		return nil, &errs.ParseError{Phase: "structural", Path: path, Err: err}
	}
	return vars, nil
}

func readTasksFile(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &errs.ParseError{Phase: "structural", Path: path, Err: err}
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var tasks []Task
	if err := dec.Decode(&tasks); err != nil {
		return nil, &errs.ParseError{Phase: "structural", Path: path, Err: err}
	}
	return tasks, nil
}
