package mailcheck

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProbeOptions is returned when WithProbe is called
	// but HeloDomain or MailFrom is missing.
	ErrInvalidProbeOptions = errors.New("mailcheck: ProbeOptions requires HeloDomain and MailFrom")

	// ErrUnspecified matches every *InternalError.
	ErrUnspecified = errors.New("mailcheck: unspecified internal error")
)

// InternalError reports an unexpected failure inside a pipeline stage.
// Heuristic outcomes (bad syntax, missing domain, failed probe) are never
// reported this way.
type InternalError struct {
	Stage string
	Err   error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("mailcheck: internal error in %s stage: %v", e.Stage, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUnspecified) true for any InternalError.
func (e *InternalError) Is(target error) bool { return target == ErrUnspecified }
