package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/jetforge/internal/validate"
)

var schemaKind string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Export a JSON Schema (Draft 2020-12) for the inventory or playbook shape",
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().StringVar(&schemaKind, "kind", "playbook", "inventory|playbook")
}

func runSchema(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	switch schemaKind {
	case "playbook":
		data, err = validate.GenerateJSONSchema()
	case "inventory":
		data, err = generateInventorySchema()
	default:
		return fmt.Errorf("unknown schema kind %q (want inventory or playbook)", schemaKind)
	}
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func generateInventorySchema() ([]byte, error) {
	type groupFile struct {
		Hosts     []string `json:"hosts,omitempty"`
		Subgroups []string `json:"subgroups,omitempty"`
	}
	r := new(jsonschema.Reflector)
	r.DoNotReference = false
	s := r.Reflect(&groupFile{})
	s.ID = "https://github.com/ormasoftchile/jetforge/schemas/inventory-group-v1.json"
	s.Title = "jetforge inventory group"
	s.Description = "Schema for one groups/<name>.yml inventory file (Draft 2020-12)"
	return json.MarshalIndent(s, "", "  ")
}
