package inventory

import (
	"sort"
	"testing"
)

func TestDetectCycleNoneOnAcyclicGraph(t *testing.T) {
	groups := map[string]*Group{
		"all": NewGroup("all"),
		"web": NewGroup("web"),
		"db":  NewGroup("db"),
	}
	groups["all"].AddChildGroup(groups["web"])
	groups["all"].AddChildGroup(groups["db"])

	if err := DetectCycle(groups); err != nil {
		t.Errorf("unexpected cycle error: %v", err)
	}
}

func TestDetectCycleCatchesSelfReference(t *testing.T) {
	groups := map[string]*Group{"a": NewGroup("a")}
	groups["a"].AddChildGroup(groups["a"])

	if err := DetectCycle(groups); err == nil {
		t.Error("want cycle error for a group that is its own child")
	}
}

func TestDetectCycleCatchesIndirectCycle(t *testing.T) {
	groups := map[string]*Group{
		"a": NewGroup("a"),
		"b": NewGroup("b"),
		"c": NewGroup("c"),
	}
	groups["a"].AddChildGroup(groups["b"])
	groups["b"].AddChildGroup(groups["c"])
	groups["c"].AddChildGroup(groups["a"])

	if err := DetectCycle(groups); err == nil {
		t.Error("want cycle error for a -> b -> c -> a")
	}
}

func TestInventoryDescendantHostsUnionsSubgroups(t *testing.T) {
	inv := New()
	web := inv.FindOrCreateGroup("web")
	db := inv.FindOrCreateGroup("db")
	all := inv.Group(AllGroupName)
	all.AddChildGroup(web)
	all.AddChildGroup(db)

	web.AddHost("web1")
	web.AddHost("web2")
	db.AddHost("db1")

	hosts := inv.DescendantHosts(AllGroupName)
	sort.Strings(hosts)
	want := []string{"db1", "web1", "web2"}
	if len(hosts) != len(want) {
		t.Fatalf("DescendantHosts(all) = %v, want %v", hosts, want)
	}
	for i := range want {
		if hosts[i] != want[i] {
			t.Errorf("DescendantHosts(all)[%d] = %q, want %q", i, hosts[i], want[i])
		}
	}
}

func TestInventoryAncestorGroups(t *testing.T) {
	inv := New()
	web := inv.FindOrCreateGroup("web")
	frontend := inv.FindOrCreateGroup("frontend")
	frontend.AddChildGroup(web)
	inv.Group(AllGroupName).AddChildGroup(frontend)

	ancestors := inv.AncestorGroups("web")
	found := map[string]bool{}
	for _, a := range ancestors {
		found[a] = true
	}
	if !found["frontend"] || !found[AllGroupName] {
		t.Errorf("AncestorGroups(web) = %v, want to include frontend and %s", ancestors, AllGroupName)
	}
}

func TestInventoryValidateRejectsCycle(t *testing.T) {
	inv := New()
	a := inv.FindOrCreateGroup("a")
	b := inv.FindOrCreateGroup("b")
	a.AddChildGroup(b)
	b.AddChildGroup(a)

	if err := inv.Validate(); err == nil {
		t.Error("want Validate to reject a group cycle")
	}
}
