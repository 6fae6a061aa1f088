package context

import (
	"os"
	"strings"
)

// Blend renders the variable mapping visible to a template call against
// hostName at the given target: inventory vars (ancestor groups, nearest
// wins, then the host's own group, then host-level vars), play vars, and
// facts — always. TemplateModule additionally exposes `ENV_*` environment
// variables, and must be reachable from exactly one module; callers
// enforce that restriction, not this function.
//
// The blended view is not cached across calls: it is built lazily, only
// when a template call actually needs it, rather than memoized across
// mutations to host vars, play vars, or facts.
func (pc *PlaybookContext) Blend(hostName string, target BlendTarget) map[string]any {
	out := make(map[string]any)

	host := pc.inv.Host(hostName)
	if host != nil {
		for _, groupName := range pc.groupsOf(hostName) {
			if g := pc.inv.Group(groupName); g != nil {
				for k, v := range g.Vars() {
					out[k] = v
				}
			}
		}
		for k, v := range host.Facts() {
			out[k] = v
		}
		for k, v := range host.Vars() {
			out[k] = v
		}
	}

	for k, v := range pc.PlayVars() {
		out[k] = v
	}

	if target == TemplateModule {
		for _, kv := range os.Environ() {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) != 2 {
				continue
			}
			if strings.HasPrefix(parts[0], "ENV_") {
				out[parts[0]] = parts[1]
			}
		}
	}

	return out
}

// groupsOf returns every group name hostName belongs to, directly or
// through ancestry, ordered so outer (more general) groups are visited
// first and can be overridden by more specific ones.
func (pc *PlaybookContext) groupsOf(hostName string) []string {
	var direct []string
	for _, gname := range pc.inv.GroupNames() {
		g := pc.inv.Group(gname)
		if g == nil {
			continue
		}
		for _, h := range g.DirectHosts() {
			if h == hostName {
				direct = append(direct, gname)
				break
			}
		}
	}

	seen := make(map[string]bool)
	var order []string
	for _, d := range direct {
		anc := pc.inv.AncestorGroups(d)
		for i := len(anc) - 1; i >= 0; i-- {
			a := anc[i]
			if !seen[a] {
				seen[a] = true
				order = append(order, a)
			}
		}
	}
	for _, d := range direct {
		if !seen[d] {
			seen[d] = true
			order = append(order, d)
		}
	}
	return order
}
