package qsim

import (
	"errors"
	"fmt"
)

/*
Sentinel errors for the simulator. Callers match them with errors.Is; the
functions that detect a failure wrap the sentinel with context using %w.
None of these are retried: they indicate either a programming error or
numerical divergence. Backend failures are the exception and are carried by
BackendError instead.
*/
var (
	// ErrInvalidQubitIndex is returned when a qubit index falls outside
	// [0, n) for the register it is used with, is negative, or is repeated.
	ErrInvalidQubitIndex = errors.New("qsim: invalid qubit index")

	// ErrNonUnitaryGate is returned when a gate matrix fails U†U = I within
	// tolerance.
	ErrNonUnitaryGate = errors.New("qsim: gate matrix is not unitary")

	// ErrDimensionMismatch is returned when sizes disagree: a gate matrix
	// against its target count, a vector against a circuit, or a backend
	// result against its input.
	ErrDimensionMismatch = errors.New("qsim: dimension mismatch")

	// ErrNoMarkedState is returned when Grover search is asked to amplify
	// nothing.
	ErrNoMarkedState = errors.New("qsim: no marked state")

	// ErrNormalizationDrift is returned when the state norm leaves 1 by more
	// than the configured tolerance after an operation.
	ErrNormalizationDrift = errors.New("qsim: normalization drift")

	// ErrRegisterTooLarge is returned when a register exceeds the configured
	// qubit limit.
	ErrRegisterTooLarge = errors.New("qsim: register too large")

	// ErrZeroProbability is returned when collapsing onto a basis state
	// whose amplitude is zero.
	ErrZeroProbability = errors.New("qsim: zero probability outcome")

	// ErrBackendUnavailable is returned by backends that cannot serve a
	// multiply at all.
	ErrBackendUnavailable = errors.New("qsim: backend unavailable")
)

/*
BackendError records a failed accelerated multiply. It is the only
recoverable error kind: the engine catches it at the delegation point and
recomputes the product on the CPU path.
*/
type BackendError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("qsim: backend %s: %s failed: %v", e.Backend, e.Operation, e.Cause)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}
