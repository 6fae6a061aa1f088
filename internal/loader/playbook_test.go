package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadPlaybooksParsesTaskModuleTag(t *testing.T) {
	path := writeTempFile(t, "site.yml", `
- name: web tier
  groups: ["web"]
  tasks:
    - name: ensure config present
      file:
        path: /etc/app.conf
        attributes:
          mode: "0644"
`)
	pbs, err := LoadPlaybooks([]string{path})
	if err != nil {
		t.Fatalf("LoadPlaybooks: %v", err)
	}
	if len(pbs) != 1 {
		t.Fatalf("got %d playbook files, want 1", len(pbs))
	}
	plays := pbs[0].Plays
	if len(plays) != 1 {
		t.Fatalf("got %d plays, want 1", len(plays))
	}
	if len(plays[0].Tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(plays[0].Tasks))
	}
	task := plays[0].Tasks[0]
	if task.Module != "file" {
		t.Errorf("Module = %q, want %q", task.Module, "file")
	}
	if task.Name != "ensure config present" {
		t.Errorf("Name = %q, want %q", task.Name, "ensure config present")
	}
	if task.Args["path"] != "/etc/app.conf" {
		t.Errorf("Args[path] = %v, want %q", task.Args["path"], "/etc/app.conf")
	}
}

func TestLoadPlaybooksRejectsTaskWithTwoModuleTags(t *testing.T) {
	path := writeTempFile(t, "bad.yml", `
- name: broken
  groups: ["all"]
  tasks:
    - name: ambiguous
      file:
        path: /tmp/x
      shell:
        cmd: "echo hi"
`)
	if _, err := LoadPlaybooks([]string{path}); err == nil {
		t.Error("want error for a task carrying two module tags")
	}
}

func TestLoadPlaybooksRejectsUnknownField(t *testing.T) {
	path := writeTempFile(t, "bad.yml", `
- name: broken
  groups: ["all"]
  not_a_real_field: true
`)
	if _, err := LoadPlaybooks([]string{path}); err == nil {
		t.Error("want structural error for an unknown play field")
	}
}

func TestLoadPlaybooksRequiresGroupsOrRoles(t *testing.T) {
	path := writeTempFile(t, "bad.yml", `
- name: no target
`)
	if _, err := LoadPlaybooks([]string{path}); err == nil {
		t.Error("want domain error when a play has neither groups nor roles")
	}
}
