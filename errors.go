package tessera

import (
	"errors"
	"fmt"
)

var (
	// ErrComponentMissing is returned when a component kind is not attached
	// to the entity being queried.
	ErrComponentMissing = errors.New("tessera: component missing")

	// ErrDuplicateComponent is returned when attaching a component kind the
	// entity already carries.
	ErrDuplicateComponent = errors.New("tessera: duplicate component")

	// ErrStaleEntity is returned for handles whose entity has been destroyed.
	ErrStaleEntity = errors.New("tessera: stale entity")

	// ErrAmbiguousAnimationSource is returned when a second animation-state
	// variant is attached to an entity that already has one. The first
	// variant stays in effect.
	ErrAmbiguousAnimationSource = errors.New("tessera: ambiguous animation source")

	// ErrBareFrameSource is returned when a Flipbook or TileFrame is stored
	// as its own component kind instead of as a FrameSource.
	ErrBareFrameSource = errors.New("tessera: frame source variant stored directly")
)

// ConfigurationError reports malformed or inconsistent input data (maps,
// fonts, manifests). Loads that fail with it create nothing.
type ConfigurationError struct {
	Source string // file path or a short description of the input
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "tessera: configuration"
	if e.Source != "" {
		msg += " " + e.Source
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configErrorf(source string, err error, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Source: source, Reason: fmt.Sprintf(format, args...), Err: err}
}
