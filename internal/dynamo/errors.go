package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for attractor generation.
var (
	// ErrConfiguration indicates an invalid dimension, degree, window or axis.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrInvalidSeedLength indicates a seed or coefficient vector of the wrong length.
	ErrInvalidSeedLength = errors.New("dynamo: invalid seed length")

	// ErrInvalidSeedAlphabet indicates a seed symbol outside the coefficient alphabet.
	ErrInvalidSeedAlphabet = errors.New("dynamo: invalid seed alphabet")

	// ErrDivergence indicates the trajectory left the finite or bounded regime.
	ErrDivergence = errors.New("dynamo: trajectory diverged")

	// ErrEmptyInput indicates rasterization was asked to process zero points.
	ErrEmptyInput = errors.New("dynamo: empty input")

	// ErrSearchExhausted indicates the search hit its attempt budget.
	ErrSearchExhausted = errors.New("dynamo: search exhausted")
)

// ConfigError wraps ErrConfiguration with the offending field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// Configf builds a ConfigError for field.
func Configf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SeedError describes why a seed or coefficient vector was rejected.
type SeedError struct {
	Length   int
	Want     int
	Position int
	Symbol   rune
	Wrapped  error
}

func (e *SeedError) Error() string {
	if errors.Is(e.Wrapped, ErrInvalidSeedLength) {
		return fmt.Sprintf("%v: got %d, want %d", e.Wrapped, e.Length, e.Want)
	}
	return fmt.Sprintf("%v: %q at position %d", e.Wrapped, e.Symbol, e.Position)
}

func (e *SeedError) Unwrap() error {
	return e.Wrapped
}

// DivergenceReason distinguishes overflow from leaving the escape radius.
type DivergenceReason int

const (
	NonFinite DivergenceReason = iota
	Escaped
)

func (r DivergenceReason) String() string {
	if r == Escaped {
		return "escaped"
	}
	return "non-finite"
}

// DivergenceError wraps ErrDivergence with the step at which it was detected.
type DivergenceError struct {
	Step   int
	Reason DivergenceReason
	State  State
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%v at step %d (%s)", ErrDivergence, e.Step, e.Reason)
}

func (e *DivergenceError) Unwrap() error {
	return ErrDivergence
}

// ExhaustedError wraps ErrSearchExhausted with the number of attempts spent.
type ExhaustedError struct {
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v after %d attempts", ErrSearchExhausted, e.Attempts)
}

func (e *ExhaustedError) Unwrap() error {
	return ErrSearchExhausted
}
