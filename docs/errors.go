package docs

import (
	"errors"

	"github.com/lexandro/mdindex/guard"
)

// Errors returned by Service. Callers match them with errors.Is.
var (
	// ErrAccessDenied is returned for any path that resolves outside the root.
	// It never reveals whether the outside path exists.
	ErrAccessDenied = guard.ErrAccessDenied

	ErrNotFound       = errors.New("not found")
	ErrNotADocument   = errors.New("not a document")
	ErrNotADirectory  = errors.New("not a directory")
	ErrInvalidPattern = errors.New("invalid glob pattern")
)
