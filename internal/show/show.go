// Package show renders inventory and playbook summaries for the `show`
// subcommand, styled with lipgloss and glamour the way
// pkg/tui/styles.go and pkg/tui/markdown.go render step lists and
// runbook descriptions.
package show

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/loader"
)

var (
	colorCyan   = lipgloss.Color("51")
	colorYellow = lipgloss.Color("214")
	colorDim    = lipgloss.Color("240")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	groupStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

var renderer *glamour.TermRenderer

func init() {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		renderer = r
	}
}

func renderMarkdown(md string) string {
	if renderer == nil || strings.TrimSpace(md) == "" {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// Inventory renders every group's host membership and variable keys.
func Inventory(inv *inventory.Inventory) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("INVENTORY"))
	b.WriteString("\n")

	groups := inv.GroupNames()
	sort.Strings(groups)
	for _, name := range groups {
		g := inv.Group(name)
		b.WriteString(groupStyle.Render(name))
		hosts := g.DirectHosts()
		if len(hosts) > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf(" (%d host%s)", len(hosts), plural(len(hosts)))))
		}
		b.WriteString("\n")
		for _, h := range hosts {
			b.WriteString("  - " + h + "\n")
		}
		for _, child := range g.ChildGroups() {
			b.WriteString(dimStyle.Render("  ^ " + child + "\n"))
		}
	}
	return b.String()
}

// Playbook renders every play's name, groups, roles, and task list as a
// markdown document passed through glamour.
func Playbook(pb loader.PlaybookFile) string {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", pb.Path)
	for i, play := range pb.Plays {
		name := play.Name
		if name == "" {
			name = fmt.Sprintf("play %d", i+1)
		}
		fmt.Fprintf(&md, "## %s\n\n", name)
		fmt.Fprintf(&md, "- groups: `%s`\n", strings.Join(play.Groups, ", "))
		if len(play.Roles) > 0 {
			fmt.Fprintf(&md, "- roles: `%s`\n", strings.Join(play.Roles, ", "))
		}
		md.WriteString("\n")
		for _, t := range play.Tasks {
			label := t.Name
			if label == "" {
				label = t.Module
			}
			fmt.Fprintf(&md, "- **%s** (`%s`)\n", label, t.Module)
		}
		for _, h := range play.Handlers {
			fmt.Fprintf(&md, "- handler **%s** (`%s`)\n", h.Name, h.Module)
		}
		md.WriteString("\n")
	}
	return renderMarkdown(md.String())
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
