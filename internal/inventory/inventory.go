package inventory

import "sync"

// AllGroupName is the implicit group every host and group ultimately
// descends from.
const AllGroupName = "all"

// Inventory owns every Host and Group for the duration of a run and
// provides find-or-create semantics for both.
type Inventory struct {
	mu     sync.RWMutex
	hosts  map[string]*Host
	groups map[string]*Group
}

// New creates an empty inventory with the implicit `all` group present.
func New() *Inventory {
	inv := &Inventory{
		hosts:  make(map[string]*Host),
		groups: make(map[string]*Group),
	}
	inv.groups[AllGroupName] = NewGroup(AllGroupName)
	return inv
}

// FindOrCreateHost returns the existing host by name, creating one if absent.
func (inv *Inventory) FindOrCreateHost(name string) *Host {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	h, ok := inv.hosts[name]
	if !ok {
		h = NewHost(name)
		inv.hosts[name] = h
	}
	return h
}

// FindOrCreateGroup returns the existing group by name, creating one if absent.
func (inv *Inventory) FindOrCreateGroup(name string) *Group {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	g, ok := inv.groups[name]
	if !ok {
		g = NewGroup(name)
		inv.groups[name] = g
	}
	return g
}

// Host returns the named host, or nil.
func (inv *Inventory) Host(name string) *Host {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.hosts[name]
}

// Group returns the named group, or nil.
func (inv *Inventory) Group(name string) *Group {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.groups[name]
}

// HostNames returns every host name in the inventory.
func (inv *Inventory) HostNames() []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]string, 0, len(inv.hosts))
	for name := range inv.hosts {
		out = append(out, name)
	}
	return out
}

// GroupNames returns every group name in the inventory.
func (inv *Inventory) GroupNames() []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]string, 0, len(inv.groups))
	for name := range inv.groups {
		out = append(out, name)
	}
	return out
}

// Validate runs the required cycle-detection pass over the group DAG.
func (inv *Inventory) Validate() error {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return DetectCycle(inv.groups)
}

// DescendantHosts returns every host reachable from groupName through the
// child-group graph, including groupName's direct hosts. The traversal is
// memoised for the duration of this call only; ancestor/descendant
// queries are never cached globally, since the graph can change between
// calls as inventory loads progress.
func (inv *Inventory) DescendantHosts(groupName string) []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	seenGroups := make(map[string]bool)
	seenHosts := make(map[string]bool)
	var order []string

	var walk func(name string)
	walk = func(name string) {
		if seenGroups[name] {
			return
		}
		seenGroups[name] = true
		g, ok := inv.groups[name]
		if !ok {
			return
		}
		for _, h := range g.DirectHosts() {
			if !seenHosts[h] {
				seenHosts[h] = true
				order = append(order, h)
			}
		}
		for _, child := range g.ChildGroups() {
			walk(child)
		}
	}
	walk(groupName)
	return order
}

// DescendantHostsOfAny unions DescendantHosts over several group names,
// the shape a play's `groups:` list needs to compute its remaining-hosts set.
func (inv *Inventory) DescendantHostsOfAny(groupNames []string) []string {
	seen := make(map[string]bool)
	var order []string
	for _, g := range groupNames {
		for _, h := range inv.DescendantHosts(g) {
			if !seen[h] {
				seen[h] = true
				order = append(order, h)
			}
		}
	}
	return order
}

// AncestorGroups returns every group name that reaches groupName through
// the child-group graph (i.e. groupName's transitive parents), memoised
// for the duration of this call only.
func (inv *Inventory) AncestorGroups(groupName string) []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	seen := make(map[string]bool)
	var order []string

	var walk func(name string)
	walk = func(name string) {
		g, ok := inv.groups[name]
		if !ok {
			return
		}
		for _, parent := range g.ParentGroups() {
			if !seen[parent] {
				seen[parent] = true
				order = append(order, parent)
				walk(parent)
			}
		}
	}
	walk(groupName)
	return order
}
