package epidemic

import (
	"errors"
	"fmt"
)

// ErrMissingEdge is wrapped by ConsistencyError.
var ErrMissingEdge = errors.New("connection has no edge record")

// ConsistencyError reports an adjacency entry with no matching edge. The
// stepper absorbs it: the contact is treated as having the fallback
// strength and the error is logged.
type ConsistencyError struct {
	Individual int
	Neighbor   int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("individual %d lists neighbor %d: %v", e.Individual, e.Neighbor, ErrMissingEdge)
}

// Unwrap lets callers match with errors.Is(err, ErrMissingEdge).
func (e *ConsistencyError) Unwrap() error {
	return ErrMissingEdge
}
