package validate

import (
	"testing"

	"github.com/ormasoftchile/jetforge/internal/inventory"
	"github.com/ormasoftchile/jetforge/internal/loader"
)

func TestDomainFlagsUnknownModule(t *testing.T) {
	pb := loader.PlaybookFile{
		Plays: []loader.Play{
			{
				Name:   "p1",
				Groups: []string{"all"},
				Tasks: []loader.Task{
					{Name: "t1", Module: "not_a_real_module", Args: map[string]any{}},
				},
			},
		},
	}
	errs := Domain(pb, nil)
	if len(errs) == 0 {
		t.Fatal("want a domain error for an unknown module tag")
	}
}

func TestDomainFlagsUnknownGroup(t *testing.T) {
	inv := inventory.New()
	pb := loader.PlaybookFile{
		Plays: []loader.Play{
			{Name: "p1", Groups: []string{"does_not_exist"}},
		},
	}
	errs := Domain(pb, inv)
	if len(errs) == 0 {
		t.Fatal("want a domain error for a play referencing an unknown group")
	}
}

func TestDomainFlagsInvalidOctalMode(t *testing.T) {
	pb := loader.PlaybookFile{
		Plays: []loader.Play{
			{
				Name:   "p1",
				Groups: []string{"all"},
				Tasks: []loader.Task{
					{Name: "t1", Module: "file", Args: map[string]any{
						"path":       "/tmp/x",
						"attributes": map[string]any{"mode": "not-octal"},
					}},
				},
			},
		},
	}
	errs := Domain(pb, nil)
	if len(errs) == 0 {
		t.Fatal("want a domain error for an invalid octal mode string")
	}
}

func TestDomainFlagsUnknownNotifyTarget(t *testing.T) {
	pb := loader.PlaybookFile{
		Plays: []loader.Play{
			{
				Name:   "p1",
				Groups: []string{"all"},
				Tasks: []loader.Task{
					{Name: "t1", Module: "file", Args: map[string]any{
						"path": "/tmp/x",
						"and":  map[string]any{"notify": "no-such-handler"},
					}},
				},
			},
		},
	}
	errs := Domain(pb, nil)
	if len(errs) == 0 {
		t.Fatal("want a domain error for notify targeting an undeclared handler")
	}
}

func TestDomainAcceptsValidPlaybook(t *testing.T) {
	inv := inventory.New()
	pb := loader.PlaybookFile{
		Plays: []loader.Play{
			{
				Name:   "p1",
				Groups: []string{inventory.AllGroupName},
				Tasks: []loader.Task{
					{Name: "t1", Module: "file", Args: map[string]any{
						"path": "/tmp/x",
						"and":  map[string]any{"notify": "restart"},
					}},
				},
				Handlers: []loader.Task{
					{Name: "restart", Module: "sd_service", Args: map[string]any{}},
				},
			},
		},
	}
	if errs := Domain(pb, inv); len(errs) != 0 {
		t.Errorf("want no domain errors, got %v", errs)
	}
}
