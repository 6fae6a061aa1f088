package modules

import "github.com/ormasoftchile/jetforge/internal/task"

// Registry maps a playbook task's module tag to the task.Module that
// implements it. A tag absent from this map is a domain-validation
// error, not a panic.
var Registry = map[string]task.Module{
	"file":       File{},
	"shell":      Shell{},
	"copy":       Copy{},
	"template":   Template{},
	"assert":     Assert{},
	"fail":       Fail{},
	"debug":      Debug{},
	"echo":       Echo{},
	"set":        Set{},
	"sd_service": SDService{},
}

// Names returns the known module tags, for schema generation and error
// messages. The order is Go's map iteration order: neither sorted nor
// the order of declaration.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	return names
}
