package store

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Storage error taxonomy. None of these are fatal to the running process;
// implementations classify engine errors with one of these so callers can
// tell failures apart with errors.Is.
var (
	// ErrUnavailable means the storage engine could not be opened.
	ErrUnavailable = goerr.New("storage unavailable")

	// ErrRead means the engine was reachable but a read failed.
	ErrRead = goerr.New("storage read failed")

	// ErrWrite means the engine was reachable but a write failed.
	ErrWrite = goerr.New("storage write failed")
)

// Classify tags cause with one of the taxonomy errors. Both kind and cause
// remain reachable through errors.Is and errors.As.
func Classify(kind, cause error) error {
	return fmt.Errorf("%w: %w", kind, cause)
}
