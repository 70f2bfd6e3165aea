package session

import "fmt"

// InvariantError reports a contract violation by the calling code: a
// wrong-phase transition, a double write to a write-once field, or a
// mutation of a frozen pointer. These are not recoverable business
// outcomes; the platform layer maps them to its fault boundary.
type InvariantError struct {
	Op     string
	Reason string
	Phase  Phase
}

func (e *InvariantError) Error() string {
	if e.Phase != "" {
		return fmt.Sprintf("session invariant violated in %s: %s (phase %s)", e.Op, e.Reason, e.Phase)
	}
	return fmt.Sprintf("session invariant violated in %s: %s", e.Op, e.Reason)
}

func phaseMismatch(op string, actual, wanted Phase) *InvariantError {
	return &InvariantError{
		Op:     op,
		Reason: fmt.Sprintf("requires phase %s", wanted),
		Phase:  actual,
	}
}
