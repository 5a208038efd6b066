package odm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidModelName model names must not be empty.
	ErrInvalidModelName = errors.New("odm: model name must not be empty")
	// ErrMissingSchema is matched by every *MissingSchemaError.
	ErrMissingSchema = errors.New("odm: schema hasn't been registered for model")
	// ErrNotConnected the model has neither a storage nor an open connection.
	ErrNotConnected = errors.New("odm: connection is not open")
)

// MissingSchemaError a model was looked up by name but never defined.
type MissingSchemaError struct {
	Name string
}

func (e *MissingSchemaError) Error() string {
	return fmt.Sprintf("%s %q", ErrMissingSchema, e.Name)
}

// Is makes errors.Is(err, ErrMissingSchema) hold.
func (e *MissingSchemaError) Is(target error) bool {
	return target == ErrMissingSchema
}
