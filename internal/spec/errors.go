package spec

import (
	"fmt"
)

// MalformedSpecError occurs when the input has a structural defect.
type MalformedSpecError struct {
	Source string
	// Index is the declaration position, or -1 for file-level defects.
	Index   int
	Field   string
	Message string
	Err     error
}

func (e *MalformedSpecError) Error() string {
	loc := e.Source
	if e.Index >= 0 {
		loc = fmt.Sprintf("%s: declaration %d", e.Source, e.Index)
	}
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Field != "" {
		return fmt.Sprintf("malformed spec at '%s': %s (field: %s)", loc, msg, e.Field)
	}
	return fmt.Sprintf("malformed spec at '%s': %s", loc, msg)
}

func (e *MalformedSpecError) Unwrap() error {
	return e.Err
}

// UnrecognizedTypeTagError occurs when a type tag is unknown or used where
// it is not allowed (void parameter, raw-pointer return).
type UnrecognizedTypeTagError struct {
	Declaration string
	// Parameter is empty for the return type.
	Parameter string
	Tag       string
}

func (e *UnrecognizedTypeTagError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("unrecognized return type tag '%s' in declaration '%s'", e.Tag, e.Declaration)
	}
	return fmt.Sprintf("unrecognized type tag '%s' for parameter '%s' in declaration '%s'",
		e.Tag, e.Parameter, e.Declaration)
}
