package pathfind

import (
	"errors"
	"fmt"
)

var (
	// ErrLabelNotFound means a query matched no point
	ErrLabelNotFound = errors.New("label not found")

	// ErrNoPathExists means both queries resolved but no sequence of edges connects them
	ErrNoPathExists = errors.New("no path exists")

	// ErrMalformedGraph is only returned in strict mode
	ErrMalformedGraph = errors.New("malformed graph")

	// ErrSearchBudgetExceeded means Options.MaxSteps ran out before the search finished
	ErrSearchBudgetExceeded = errors.New("search budget exceeded")
)

// ResolveError names the query that could not be resolved
type ResolveError struct {
	Query   string
	Resolve Resolution
	Role    string // "start" or "end"
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s %s %q: %v", e.Role, e.Resolve, e.Query, ErrLabelNotFound)
}

func (e *ResolveError) Unwrap() error {
	return ErrLabelNotFound
}
