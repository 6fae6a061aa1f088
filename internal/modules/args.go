// Package modules implements the closed set of module kinds this engine
// ships: file, shell, copy, template, assert, fail, debug, echo, set, and
// sd_service. Each is grounded on its original_source/src/modules/...
// counterpart and written against the two-phase task.Module/task.Action
// contract internal/task defines.
package modules

import (
	"fmt"

	"github.com/ormasoftchile/jetforge/internal/module"
)

// rawString pulls a required string field out of a task's raw args map,
// the shape a YAML task body decodes into before any templating happens.
func rawString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string", key)
	}
	return s, nil
}

// rawStringOption pulls an optional string field, returning nil when absent.
func rawStringOption(args map[string]any, key string) (*string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("field %q must be a string", key)
	}
	return &s, nil
}

// rawStringList pulls an optional list-of-strings field.
func rawStringList(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q must be a list", key)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, fmt.Errorf("field %q must be a list of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// rawMap pulls an optional nested map field (used for `with`, `and`, `attributes`, `vars`).
func rawMap(args map[string]any, key string) map[string]any {
	v, ok := args[key]
	if !ok || v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m
}

// evaluateError lifts a *module.Response carrying a Failed status into
// the plain error task.Module.Evaluate returns — the FSM driver turns
// any evaluate-time error into an Outcome{Status: Failed} itself, so a
// validation failure never reaches a connection.
type evaluateError struct {
	resp *module.Response
}

func errorFromResponse(resp *module.Response) error {
	return &evaluateError{resp: resp}
}

func (e *evaluateError) Error() string { return e.resp.Message }
