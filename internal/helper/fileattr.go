package helper

import "github.com/ormasoftchile/jetforge/internal/module"

// FileAttributes is the already-templated, optional owner/group/mode a
// module wants a path to have. A nil field means "leave it alone" — the
// file module never tracks a field it wasn't asked to manage. Grounded
// on the FileAttributesEvaluated shape referenced throughout
// original_source/src/handle/remote.rs.
type FileAttributes struct {
	Owner *string
	Group *string
	Mode  *string
}

// AllFileAttributeFields names every Field the file-attribute
// reconciliation knows how to set, in the order process_all_common_file_attributes
// applies them — owner and group before mode, so a mode that removes
// write access never blocks the chown that would have needed it.
func AllFileAttributeFields() []module.Field {
	return []module.Field{module.FieldOwner, module.FieldGroup, module.FieldMode}
}
