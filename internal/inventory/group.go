package inventory

import (
	"fmt"
	"sort"
	"sync"
)

// Group is a named collection of hosts and subgroups. The group DAG must
// be acyclic; Inventory.Validate runs an explicit cycle-detection pass
// before any run starts.
type Group struct {
	mu sync.RWMutex

	name     string
	hosts    map[string]bool
	children map[string]bool // child group names
	parents  map[string]bool // parent group names
	vars     map[string]any
}

// NewGroup creates an empty group with the given unique name.
func NewGroup(name string) *Group {
	return &Group{
		name:     name,
		hosts:    make(map[string]bool),
		children: make(map[string]bool),
		parents:  make(map[string]bool),
		vars:     make(map[string]any),
	}
}

func (g *Group) Name() string { return g.name }

// AddHost records host as a direct child of g.
func (g *Group) AddHost(hostName string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hosts[hostName] = true
}

// AddChildGroup records child as a direct subgroup of g.
func (g *Group) AddChildGroup(child *Group) {
	g.mu.Lock()
	g.children[child.name] = true
	g.mu.Unlock()

	child.mu.Lock()
	child.parents[g.name] = true
	child.mu.Unlock()
}

// DirectHosts returns the names of g's direct child hosts, sorted.
func (g *Group) DirectHosts() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.hosts)
}

// ChildGroups returns the names of g's direct subgroups, sorted.
func (g *Group) ChildGroups() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.children)
}

// ParentGroups returns the names of g's direct parent groups, sorted.
func (g *Group) ParentGroups() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.parents)
}

// SetVars replaces g's raw variable document.
func (g *Group) SetVars(vars map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.vars = vars
}

// Vars returns g's raw variable document.
func (g *Group) Vars() map[string]any {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]any, len(g.vars))
	for k, v := range g.vars {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DetectCycle walks the child-group graph from every group in groups and
// returns an error naming the first cycle found. Ancestor/descendant
// queries assume acyclicity and are not safe to call before this passes.
func DetectCycle(groups map[string]*Group) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(groups))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("group cycle detected: %v -> %s", append(append([]string{}, path...), name), name)
		}
		color[name] = gray
		path = append(path, name)
		grp, ok := groups[name]
		if ok {
			for _, child := range grp.ChildGroups() {
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		color[name] = black
		return nil
	}

	for name := range groups {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}
