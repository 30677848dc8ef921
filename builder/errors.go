package builder

import (
	"errors"
	"fmt"
)

var (
	ErrStructuralConfiguration = errors.New("structural configuration error")
	ErrInvalidTarget           = errors.New("invalid target season")
)

// StructuralConfigurationError means the new season graph could not be made
// consistent, so nothing must be written.
type StructuralConfigurationError struct {
	Reason string
}

func (e *StructuralConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrStructuralConfiguration, e.Reason)
}

func (e *StructuralConfigurationError) Unwrap() error {
	return ErrStructuralConfiguration
}

func structural(format string, args ...any) error {
	return &StructuralConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
