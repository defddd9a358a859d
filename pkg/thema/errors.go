package thema

import (
	"fmt"
)

// SchemaError indicates the join key field is absent from one side of the
// join, or that inputs with incompatible schemas were combined.
type SchemaError struct {
	Side  string // "features" or "attributes"
	Field string
	Cause string
}

func (e *SchemaError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("schema error (%s): %s", e.Side, e.Cause)
	}
	return fmt.Sprintf("schema error: field %q not present in %s", e.Field, e.Side)
}

// DuplicateKeyError indicates two or more attribute rows share a join key,
// making the join ambiguous. Duplicate keys are a data-quality error and
// are never silently resolved.
type DuplicateKeyError struct {
	Key   string
	Count int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate join key %q: %d attribute rows share it", e.Key, e.Count)
}

// UnknownVariableError indicates a style references a variable that is not
// in the dataset's attribute schema.
type UnknownVariableError struct {
	Variable  string
	Available []string
}

func (e *UnknownVariableError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown variable %q: dataset has no attributes", e.Variable)
	}
	return fmt.Sprintf("unknown variable %q (available: %v)", e.Variable, e.Available)
}

// EmptyGeometryError indicates a render was requested for a dataset with
// zero features. An empty artifact is never produced.
type EmptyGeometryError struct{}

func (e *EmptyGeometryError) Error() string {
	return "empty geometry: dataset contains no features"
}

// RenderBackendError indicates the drawing surface could not be
// initialized. It is propagated, not retried.
type RenderBackendError struct {
	Mode   string
	Reason string
}

func (e *RenderBackendError) Error() string {
	return fmt.Sprintf("render backend (%s): %s", e.Mode, e.Reason)
}

// LoadError indicates a geometry or attribute source could not be read or
// parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// NotFoundError indicates the boundary provider has no data for the
// requested region and administrative level.
type NotFoundError struct {
	Region string
	Level  int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("region %q: no boundaries at administrative level %d", e.Region, e.Level)
}
