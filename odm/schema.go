package odm

import (
	"fmt"
	"strings"

	"github.com/ti/docmock/dependencies/database"
)

// Schema describes the documents of a model.
type Schema struct {
	Indexes []*database.Index
	Options SchemaOptions
}

// SchemaOptions the schema-level options.
type SchemaOptions struct {
	// AutoIndex builds Indexes when the model is defined and when its connection opens.
	AutoIndex bool
	// Collection overrides the collection name derived from the model name.
	Collection string
}

// NewSchema a schema with AutoIndex enabled.
func NewSchema(indexes ...*database.Index) *Schema {
	return &Schema{
		Indexes: indexes,
		Options: SchemaOptions{AutoIndex: true},
	}
}

// SchemaError reports an invalid schema.
type SchemaError struct {
	Index  int
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("odm: invalid schema index %d: %s", e.Index, e.Reason)
}

// Validate checks every index has at least one non-empty field.
func (s *Schema) Validate() error {
	for i, idx := range s.Indexes {
		if idx == nil {
			return &SchemaError{Index: i, Reason: "index is nil"}
		}
		for _, f := range idx.Fields() {
			if strings.TrimSpace(f) == "" {
				return &SchemaError{Index: i, Reason: fmt.Sprintf("empty field in %q", idx.Field)}
			}
		}
	}
	return nil
}

// CollectionName derives the collection of a model: lower case and plural.
func CollectionName(model string) string {
	name := strings.ToLower(model)
	switch {
	case name == "":
		return name
	case strings.HasSuffix(name, "s"):
		return name
	case strings.HasSuffix(name, "y") && len(name) > 1 && !strings.ContainsRune("aeiou", rune(name[len(name)-2])):
		return name[:len(name)-1] + "ies"
	}
	return name + "s"
}
