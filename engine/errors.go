package engine

import "fmt"

// ValidationError reports a malformed field at construction or call time.
// The target object is never partially built or mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func errValidation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InsufficientPositionError means a reduce or close asked for more quantity
// than is held. The position is left untouched.
type InsufficientPositionError struct {
	Symbol    string
	Held      float64
	Requested float64
}

func (e *InsufficientPositionError) Error() string {
	return fmt.Sprintf("insufficient position %s: held %.4f, requested %.4f", e.Symbol, e.Held, e.Requested)
}

// InvalidTransitionError means an operation was attempted on a trade already
// in a terminal status.
type InvalidTransitionError struct {
	TradeID string
	Status  TradeStatus
	Op      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("trade %s: cannot %s from terminal status %s", e.TradeID, e.Op, e.Status)
}
