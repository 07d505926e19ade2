package qsim

import "fmt"

/*
Backend is the narrow accelerated-multiply capability the engine delegates
dense matrix-vector products to. Implementations may run on a device; all
setup, memory transfer and kernel launch concerns stay on their side of this
interface.

Multiply must return a slice of the same length as v that equals m·v within
floating-point tolerance, and must not retain or modify v. Any failure is
reported as an error; the engine treats it as recoverable and recomputes the
product on the CPU.
*/
type Backend interface {
	Name() string
	Multiply(m *Matrix, v []complex128) ([]complex128, error)
}

/*
CPUBackend computes the product directly. It is the reference every other
backend is contract-tested against, and the path the engine falls back to.
*/
type CPUBackend struct{}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{}
}

func (CPUBackend) Name() string {
	return "cpu"
}

func (CPUBackend) Multiply(m *Matrix, v []complex128) ([]complex128, error) {
	if len(v) != m.Dim() {
		return nil, fmt.Errorf("%w: %d×%d matrix times vector of %d", ErrDimensionMismatch, m.Dim(), m.Dim(), len(v))
	}

	out := make([]complex128, len(v))
	m.MulVec(out, v)

	return out, nil
}

/*
multiplyChecked calls the backend and enforces the output contract, folding
every failure into a BackendError.
*/
func multiplyChecked(b Backend, m *Matrix, v []complex128) ([]complex128, error) {
	out, err := b.Multiply(m, v)
	if err != nil {
		return nil, &BackendError{Backend: b.Name(), Operation: "multiply", Cause: err}
	}

	if len(out) != len(v) {
		return nil, &BackendError{
			Backend:   b.Name(),
			Operation: "multiply",
			Cause:     fmt.Errorf("%w: returned %d amplitudes for %d", ErrDimensionMismatch, len(out), len(v)),
		}
	}

	return out, nil
}
