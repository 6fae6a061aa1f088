package modules

import (
	"github.com/ormasoftchile/jetforge/internal/handle"
	"github.com/ormasoftchile/jetforge/internal/helper"
	"github.com/ormasoftchile/jetforge/internal/module"
	"github.com/ormasoftchile/jetforge/internal/template"
)

// evaluateFileAttributes templates an optional `attributes: {owner, group,
// mode}` block into a *helper.FileAttributes, the shape file/copy/template
// share for reconciling ownership and permissions.
func evaluateFileAttributes(h *handle.TaskHandle, tm template.Mode, raw map[string]any) (*helper.FileAttributes, *module.Response) {
	if raw == nil {
		return nil, nil
	}
	attrs := &helper.FileAttributes{}

	if ownerRaw, ok := raw["owner"]; ok {
		s, _ := ownerRaw.(string)
		owner, resp := h.Template.StringNoSpaces("attributes.owner", s)
		if resp != nil {
			return nil, resp
		}
		attrs.Owner = &owner
	}
	if groupRaw, ok := raw["group"]; ok {
		s, _ := groupRaw.(string)
		group, resp := h.Template.StringNoSpaces("attributes.group", s)
		if resp != nil {
			return nil, resp
		}
		attrs.Group = &group
	}
	if modeRaw, ok := raw["mode"]; ok {
		s := stringOrEmpty(modeRaw)
		mode, resp := h.Template.StringNoSpaces("attributes.mode", s)
		if resp != nil {
			return nil, resp
		}
		if !helper.IsOctalString(mode) {
			return nil, h.Response.Failed("field (attributes.mode): not an octal string: " + mode)
		}
		attrs.Mode = &mode
	}
	return attrs, nil
}
