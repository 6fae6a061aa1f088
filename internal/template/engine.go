// Package template renders `{{ ... }}` strings against a host-scoped
// variable mapping and evaluates boolean conditionals.
package template

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"
)

// Mode selects whether a missing variable is a hard error (Strict) or is
// silently substituted with a sentinel value (Off) so a syntax-only scan
// still exercises a module's evaluate path.
type Mode int

const (
	Strict Mode = iota
	Off
)

// MissingVariableError is the hard failure Strict mode raises.
type MissingVariableError struct {
	Template string
	Name     string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template %q references undefined variable %q", e.Template, e.Name)
}

var fieldRef = regexp.MustCompile(`\{\{\s*\.?([A-Za-z_][A-Za-z0-9_]*)`)

func helperFuncs() template.FuncMap {
	return template.FuncMap{
		"to_lower_case": strings.ToLower,
		"to_upper_case": strings.ToUpper,
		"trim":          strings.TrimSpace,
		"trim_start":    func(s string) string { return strings.TrimLeft(s, " \t\n\r") },
		"trim_end":      func(s string) string { return strings.TrimRight(s, " \t\n\r") },
		"contains":      strings.Contains,
		"starts_with":   strings.HasPrefix,
		"ends_with":     strings.HasSuffix,
		"isdefined": func(vars map[string]any, name string) bool {
			_, ok := vars[name]
			return ok
		},
	}
}

// Render renders tmpl against vars. In Strict mode a referenced variable
// that is absent from vars is a *MissingVariableError. In Off mode (used
// during a syntax-only scan) the reference is substituted with an empty
// string before execution so the module's evaluate path still runs.
func Render(tmpl string, vars map[string]any, mode Mode) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	effective := vars
	if mode == Strict {
		if name, ok := firstMissing(tmpl, vars); ok {
			return "", &MissingVariableError{Template: tmpl, Name: name}
		}
	} else {
		effective = fillDefaults(tmpl, vars)
	}

	// A bare `{{ name` reference is rewritten to `{{ .name` so text/template
	// resolves it as a variable lookup rather than an undefined function.
	src := fieldRef.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := fieldRef.FindStringSubmatch(m)[1]
		if isHelperName(name) || strings.Contains(m, ".") {
			return m
		}
		return strings.TrimSuffix(m, name) + "." + name
	})

	t, err := template.New("t").Option("missingkey=zero").Funcs(helperFuncs()).Parse(src)
	if err != nil {
		return "", fmt.Errorf("template parse: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, effective); err != nil {
		return "", fmt.Errorf("template eval: %w", err)
	}
	out := buf.String()
	if mode == Strict {
		out = strings.ReplaceAll(out, "<no value>", "")
	}
	return out, nil
}

func firstMissing(tmpl string, vars map[string]any) (string, bool) {
	for _, m := range fieldRef.FindAllStringSubmatch(tmpl, -1) {
		name := m[1]
		if isHelperName(name) {
			continue
		}
		if _, ok := vars[name]; !ok {
			return name, true
		}
	}
	return "", false
}

func fillDefaults(tmpl string, vars map[string]any) map[string]any {
	out := make(map[string]any, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	for _, m := range fieldRef.FindAllStringSubmatch(tmpl, -1) {
		name := m[1]
		if isHelperName(name) {
			continue
		}
		if _, ok := out[name]; !ok {
			out[name] = ""
		}
	}
	return out
}

func isHelperName(name string) bool {
	switch name {
	case "to_lower_case", "to_upper_case", "trim", "trim_start", "trim_end",
		"contains", "starts_with", "ends_with", "isdefined", "if", "else", "end", "range", "with":
		return true
	default:
		return false
	}
}

// CoerceInt parses a rendered string as an integer, surfacing a parse
// error as a Failed-worthy error: numeric coercion happens after string
// rendering, so a bad value is always reported against the rendered
// text.
func CoerceInt(rendered string) (int, error) {
	if rendered == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(rendered))
	if err != nil {
		return 0, fmt.Errorf("coerce %q to integer: %w", rendered, err)
	}
	return n, nil
}

// CoerceBool parses a rendered string as a boolean.
func CoerceBool(rendered string) (bool, error) {
	rendered = strings.TrimSpace(rendered)
	if rendered == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(rendered)
	if err != nil {
		return false, fmt.Errorf("coerce %q to boolean: %w", rendered, err)
	}
	return b, nil
}
