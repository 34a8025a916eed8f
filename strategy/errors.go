package strategy

import "fmt"

// SignalError reports an invalid signal at construction.
type SignalError struct {
	Reason string
}

func (e *SignalError) Error() string { return "invalid signal: " + e.Reason }

func errSignal(format string, args ...any) error {
	return &SignalError{Reason: fmt.Sprintf(format, args...)}
}
