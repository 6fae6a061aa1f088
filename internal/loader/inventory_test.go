package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadInventoryStaticDirectory(t *testing.T) {
	dir := t.TempDir()
	mustMkdirAll(t, filepath.Join(dir, "groups"))
	mustMkdirAll(t, filepath.Join(dir, "group_vars"))
	mustMkdirAll(t, filepath.Join(dir, "host_vars"))

	mustWriteFile(t, filepath.Join(dir, "groups", "web.yml"), "hosts: [web1, web2]\n")
	mustWriteFile(t, filepath.Join(dir, "groups", "all.yml"), "subgroups: [web]\n")
	mustWriteFile(t, filepath.Join(dir, "group_vars", "web.yml"), "http_port: 8080\n")
	mustWriteFile(t, filepath.Join(dir, "host_vars", "web1.yml"), "ansible_host: 10.0.0.1\n")

	inv, err := LoadInventory([]string{dir})
	if err != nil {
		t.Fatalf("LoadInventory: %v", err)
	}

	web := inv.Group("web")
	if web == nil {
		t.Fatal("group web not found")
	}
	hosts := web.DirectHosts()
	if len(hosts) != 2 {
		t.Fatalf("web.DirectHosts() = %v, want 2 hosts", hosts)
	}
	if web.Vars()["http_port"] != 8080 {
		t.Errorf("web group var http_port = %v, want 8080", web.Vars()["http_port"])
	}

	host := inv.Host("web1")
	if host == nil {
		t.Fatal("host web1 not found")
	}
	if v, _ := host.Var("ansible_host"); v != "10.0.0.1" {
		t.Errorf("web1 ansible_host = %v, want %q", v, "10.0.0.1")
	}

	descendants := inv.DescendantHosts("all")
	if len(descendants) != 2 {
		t.Errorf("DescendantHosts(all) = %v, want 2 hosts via the all -> web subgroup link", descendants)
	}
}

func TestLoadInventoryRejectsMissingGroupsDir(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadInventory([]string{dir}); err == nil {
		t.Error("want structural error when groups/ is absent")
	}
}
