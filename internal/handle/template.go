package handle

import (
	"os"
	"path/filepath"
	"strings"

	pctx "github.com/ormasoftchile/jetforge/internal/context"
	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/screen"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// Template supports every variable rendering and module-argument coercion
// a module's Evaluate leg needs, plus validating and processing the
// configured sudo template. Because module arguments arrive as strings,
// this is also where they are parsed back into their desired Go types.
// Grounded on handle/template.rs.
type Template struct {
	ctx      *pctx.PlaybookContext
	host     *inventory.Host
	response *Response
	mode     template.Mode
}

func newTemplate(ctx *pctx.PlaybookContext, host *inventory.Host, resp *Response, mode template.Mode) *Template {
	return &Template{ctx: ctx, host: host, response: resp, mode: mode}
}

func (t *Template) renderAgainst(tmpl string, target pctx.BlendTarget) (string, *module.Response) {
	vars := t.ctx.Blend(t.host.Name(), target)
	out, err := template.Render(tmpl, vars, t.mode)
	if err != nil {
		return "", t.response.Failed(err.Error())
	}
	if out == "" {
		return "", t.response.Failed("evaluated to empty string")
	}
	return out, nil
}

// StringForTemplateModuleUseOnly templates with access to `ENV_*` secret
// variables. Only the templating/copy module may call this — the
// TemplateModule blend target is restricted to that one module, a
// restriction enforced by callers, not here.
func (t *Template) StringForTemplateModuleUseOnly(field, tmpl string) (string, *module.Response) {
	return t.renderAgainst(tmpl, pctx.TemplateModule)
}

// StringUnsafeForShell templates a string that is not yet screened and has
// not, by itself, been passed to a shell command.
func (t *Template) StringUnsafeForShell(field, tmpl string) (string, *module.Response) {
	return t.renderAgainst(tmpl, pctx.NotTemplateModule)
}

// String templates a required string argument and screens it strictly —
// the baseline case almost every module field goes through.
func (t *Template) String(field, tmpl string) (string, *module.Response) {
	out, resp := t.StringUnsafeForShell(field, tmpl)
	if resp != nil {
		return "", resp
	}
	if err := screen.Strict(out); err != nil {
		return "", t.response.Failed("field " + field + ", " + err.Error())
	}
	return out, nil
}

// StringNoSpaces is String plus a no-spaces-allowed check (usernames, mode strings, ...).
func (t *Template) StringNoSpaces(field, tmpl string) (string, *module.Response) {
	value, resp := t.String(field, tmpl)
	if resp != nil {
		return "", resp
	}
	if strings.Contains(value, " ") {
		return "", t.response.Failed("field (" + field + "): spaces are not allowed")
	}
	return value, nil
}

// StringOption templates an optional string argument; a nil tmpl returns nil, nil.
func (t *Template) StringOption(field string, tmpl *string) (*string, *module.Response) {
	if tmpl == nil {
		return nil, nil
	}
	value, resp := t.String(field, *tmpl)
	if resp != nil {
		return nil, resp
	}
	return &value, nil
}

// StringOptionNoSpaces is StringOption plus a no-spaces-allowed check.
func (t *Template) StringOptionNoSpaces(field string, tmpl *string) (*string, *module.Response) {
	value, resp := t.StringOption(field, tmpl)
	if resp != nil {
		return nil, resp
	}
	if value != nil && strings.Contains(*value, " ") {
		return nil, t.response.Failed("field (" + field + "): spaces are not allowed")
	}
	return value, nil
}

// StringOptionTrim is StringOption with surrounding whitespace removed —
// mostly redundant with YAML's own handling, kept for variable-sourced values.
func (t *Template) StringOptionTrim(field string, tmpl *string) (*string, *module.Response) {
	value, resp := t.StringOption(field, tmpl)
	if resp != nil || value == nil {
		return value, resp
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed, nil
}

// NoTemplateStringOptionTrim trims input verbatim without any variable
// substitution, for fields that do not allow templating at all.
func (t *Template) NoTemplateStringOptionTrim(input *string) *string {
	if input == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*input)
	return &trimmed
}

// Path templates a string and screens it as a filesystem path.
func (t *Template) Path(field, tmpl string) (string, *module.Response) {
	out, resp := t.renderAgainst(tmpl, pctx.NotTemplateModule)
	if resp != nil {
		return "", resp
	}
	trimmed := strings.TrimSpace(out)
	if err := screen.Strict(trimmed); err != nil {
		return "", t.response.Failed(err.Error() + ", for field " + field)
	}
	return trimmed, nil
}

// Integer templates a required integer argument. In Off mode (syntax
// scan) it returns 0 without templating.
func (t *Template) Integer(field, tmpl string) (int, *module.Response) {
	if t.mode == template.Off {
		return 0, nil
	}
	st, resp := t.String(field, tmpl)
	if resp != nil {
		return 0, resp
	}
	n, err := template.CoerceInt(st)
	if err != nil {
		return 0, t.response.Failed("field (" + field + ") value is not an integer: " + st)
	}
	return n, nil
}

// IntegerOption templates an optional integer argument, substituting
// def when tmpl is nil.
func (t *Template) IntegerOption(field string, tmpl *string, def int) (int, *module.Response) {
	if t.mode == template.Off {
		return 0, nil
	}
	if tmpl == nil {
		return def, nil
	}
	st, resp := t.String(field, *tmpl)
	if resp != nil {
		return 0, resp
	}
	n, err := template.CoerceInt(st)
	if err != nil {
		return 0, t.response.Failed("field (" + field + ") value is not an integer: " + st)
	}
	return n, nil
}

// Boolean templates a required boolean argument. In Off mode it returns
// true, so a syntax scan's evaluate leg keeps proceeding.
func (t *Template) Boolean(field, tmpl string) (bool, *module.Response) {
	if t.mode == template.Off {
		return true, nil
	}
	st, resp := t.String(field, tmpl)
	if resp != nil {
		return false, resp
	}
	b, err := template.CoerceBool(st)
	if err != nil {
		return false, t.response.Failed("field (" + field + ") value is not a boolean: " + st)
	}
	return b, nil
}

func (t *Template) internalBooleanOption(field string, tmpl *string, def bool) (bool, *module.Response) {
	if t.mode == template.Off {
		return false, nil
	}
	if tmpl == nil {
		return def, nil
	}
	st, resp := t.String(field, *tmpl)
	if resp != nil {
		return false, resp
	}
	b, err := template.CoerceBool(st)
	if err != nil {
		return false, t.response.Failed("field (" + field + ") value is not a boolean: " + st)
	}
	return b, nil
}

// BooleanOptionDefaultTrue templates an optional boolean, defaulting to true when omitted.
func (t *Template) BooleanOptionDefaultTrue(field string, tmpl *string) (bool, *module.Response) {
	return t.internalBooleanOption(field, tmpl, true)
}

// BooleanOptionDefaultFalse templates an optional boolean, defaulting to false when omitted.
func (t *Template) BooleanOptionDefaultFalse(field string, tmpl *string) (bool, *module.Response) {
	return t.internalBooleanOption(field, tmpl, false)
}

// BooleanOptionDefaultNone templates an optional, trinary boolean: nil
// means "no preference" rather than defaulting either way.
func (t *Template) BooleanOptionDefaultNone(field string, tmpl *string) (*bool, *module.Response) {
	if t.mode == template.Off || tmpl == nil {
		return nil, nil
	}
	st, resp := t.String(field, *tmpl)
	if resp != nil {
		return nil, resp
	}
	b, err := template.CoerceBool(st)
	if err != nil {
		return nil, t.response.Failed("field (" + field + ") value is not a boolean: " + st)
	}
	return &b, nil
}

// TestCondition evaluates a boolean conditional (a `when:` guard or
// changed_when/failed_when expression) against this handle's blended
// variables. In Off mode it always returns false.
func (t *Template) TestCondition(cond string) (bool, *module.Response) {
	if t.mode == template.Off {
		return false, nil
	}
	vars := t.ctx.Blend(t.host.Name(), pctx.NotTemplateModule)
	result, err := template.TestCondition(cond, vars, t.mode)
	if err != nil {
		return false, t.response.Failed(err.Error())
	}
	return result, nil
}

// FindTemplatePath templates strPath and resolves it against the
// playbook's templates/ directory when relative.
func (t *Template) FindTemplatePath(field, strPath string) (string, *module.Response) {
	return t.findSubPath("templates", field, strPath)
}

// FindFilePath templates strPath and resolves it against the playbook's
// files/ directory when relative.
func (t *Template) FindFilePath(field, strPath string) (string, *module.Response) {
	return t.findSubPath("files", field, strPath)
}

func (t *Template) findSubPath(prefix, field, strPath string) (string, *module.Response) {
	if t.mode == template.Off {
		return "", nil
	}
	prelim := strPath
	if err := screen.Strict(prelim); err != nil {
		return "", t.response.Failed(err.Error() + ", for field: " + field)
	}
	if filepath.IsAbs(prelim) {
		if info, err := os.Stat(prelim); err == nil && !info.IsDir() {
			return prelim, nil
		}
		return "", t.response.Failed("field (" + field + "): no such file: " + strPath)
	}
	joined := filepath.Join(t.ctx.PlaybookDir(), prefix, prelim)
	if info, err := os.Stat(joined); err == nil && !info.IsDir() {
		return joined, nil
	}
	return "", t.response.Failed("field (" + field + "): no such file: " + strPath)
}

// AddSudoDetails rewrites cmd through the configured sudo template when
// sudo is non-nil, exposing only jet_sudo_user and jet_command to that
// template — never the full host variable blend, so a sudo template
// cannot be used to exfiltrate unrelated variables.
func (t *Template) AddSudoDetails(cmd string, sudo *module.SudoSpec) (string, error) {
	if sudo == nil {
		return cmd, nil
	}
	vars := map[string]any{
		"jet_sudo_user": sudo.User,
		"jet_command":   cmd,
	}
	return template.Render(sudo.Template, vars, template.Strict)
}
