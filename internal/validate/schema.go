// Package validate runs a 3-phase pipeline — structural, semantic,
// domain — over a loaded playbook or inventory. Structural
// decoding already happened in internal/loader (a strict decode failure
// never reaches this package); this package covers semantic (JSON Schema,
// via invopop/jsonschema + santhosh-tekuri/jsonschema/v6) and domain
// (custom Go rules). Grounded on pkg/schema/validate.go and
// pkg/schema/export.go.
package validate

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ormasoftchile/jetforge/internal/errs"
	"github.com/ormasoftchile/jetforge/internal/loader"
)

// playShape is the semantic-schema projection of loader.Play: the fields
// whose shape is knowable independent of which module a task names. Task
// args are intentionally schema-free here — a module body is validated by
// the domain phase against modules.Registry, not by a generic JSON Schema.
type playShape struct {
	Name      string         `json:"name,omitempty"`
	Groups    []string       `json:"groups,omitempty" jsonschema:"required"`
	Roles     []string       `json:"roles,omitempty"`
	Defaults  map[string]any `json:"defaults,omitempty"`
	Vars      map[string]any `json:"vars,omitempty"`
	VarsFiles []string       `json:"vars_files,omitempty"`
	SSHUser   string         `json:"ssh_user,omitempty"`
	SSHPort   int            `json:"ssh_port,omitempty"`
	BatchSize int            `json:"batch_size,omitempty"`
}

// GenerateJSONSchema produces the Draft 2020-12 schema a playbook's
// plays must satisfy, for both the `schema` CLI subcommand and the
// semantic validation phase below.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&[]playShape{})
	s.ID = "https://github.com/ormasoftchile/jetforge/schemas/playbook-v1.json"
	s.Title = "jetforge playbook"
	s.Description = "Schema for jetforge playbook YAML documents (Draft 2020-12)"

	return json.MarshalIndent(s, "", "  ")
}

var compiledSchema *sjsonschema.Schema

func compiledPlaySchema() (*sjsonschema.Schema, error) {
	if compiledSchema != nil {
		return compiledSchema, nil
	}
	raw, err := GenerateJSONSchema()
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	c := sjsonschema.NewCompiler()
	if err := c.AddResource("playbook-v1.json", doc); err != nil {
		return nil, err
	}
	sch, err := c.Compile("playbook-v1.json")
	if err != nil {
		return nil, err
	}
	compiledSchema = sch
	return sch, nil
}

// Semantic validates every play in pb against the generated playbook
// schema, returning one *errs.ParseError per play that fails.
func Semantic(pb loader.PlaybookFile) []*errs.ParseError {
	sch, err := compiledPlaySchema()
	if err != nil {
		return []*errs.ParseError{{Phase: "semantic", Path: pb.Path, Err: err}}
	}

	var out []*errs.ParseError
	for i, play := range pb.Plays {
		shape := playShape{
			Name: play.Name, Groups: play.Groups, Roles: play.Roles,
			Defaults: play.Defaults, Vars: play.Vars, VarsFiles: play.VarsFiles,
			SSHUser: play.SSHUser, SSHPort: play.SSHPort, BatchSize: play.BatchSize,
		}
		data, err := json.Marshal(shape)
		if err != nil {
			out = append(out, &errs.ParseError{Phase: "semantic", Path: fmt.Sprintf("plays[%d]", i), Err: err})
			continue
		}
		var inst any
		if err := json.Unmarshal(data, &inst); err != nil {
			out = append(out, &errs.ParseError{Phase: "semantic", Path: fmt.Sprintf("plays[%d]", i), Err: err})
			continue
		}
		if err := sch.Validate(inst); err != nil {
			out = append(out, &errs.ParseError{Phase: "semantic", Path: fmt.Sprintf("plays[%d]", i), Err: err})
		}
	}
	return out
}
