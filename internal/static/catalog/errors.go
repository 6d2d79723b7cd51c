package catalog

import "fmt"

// KeyFormatError reports a station key that cannot be coerced to its
// canonical integer form. It aborts the run.
type KeyFormatError struct {
	Relation string
	Line     int
	Column   string
	Value    string
}

func (e *KeyFormatError) Error() string {
	return fmt.Sprintf("%s line %d: %s value %q is not an integer station key", e.Relation, e.Line, e.Column, e.Value)
}

// ExportError reports an artifact that could not be written. Artifacts
// written before the failure stay on disk.
type ExportError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s (%s): %v", e.Artifact, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
