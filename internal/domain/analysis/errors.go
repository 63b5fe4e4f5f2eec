package analysis

import "errors"

// ErrInvalidEventID indicates a malformed event id; no store access is
// attempted for it.
var ErrInvalidEventID = errors.New("invalid event id")

// ErrEventNotFound indicates a well-formed id with no matching event.
var ErrEventNotFound = errors.New("event not found")

// GenerationError is a failed call to the text-generation service. The
// pipeline recovers from it locally: the analysis continues with an empty
// payload and the failure is recorded via confidence caps and notes.
type GenerationError struct {
	Cause string
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Cause
}
