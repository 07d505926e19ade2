package qsim

import (
	"fmt"
	"slices"
	"strings"
)

/*
Gate is an immutable unitary operator bound to the qubits it acts on.

A k-qubit gate carries a 2^k × 2^k matrix. The local row/column index of that
matrix is built from the target qubits in listed order with targets[0] as the
most significant bit, so the textbook 4×4 CNOT matrix on targets
[control, target] means what it says. Controls are not part of the matrix:
the operator is applied only on the subspace where every control qubit is 1.
*/
type Gate struct {
	name     string
	matrix   *Matrix
	targets  []int
	controls []int
}

/*
NewGate validates and builds a gate. It rejects empty or negative indices,
repeated qubits across targets and controls, a matrix whose dimension is not
2^len(targets), and a non-unitary matrix. The matrix and index slices are
copied.
*/
func NewGate(name string, m *Matrix, targets []int, controls []int) (*Gate, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: gate %s has no targets", ErrInvalidQubitIndex, name)
	}

	if m == nil {
		return nil, fmt.Errorf("%w: gate %s has no matrix", ErrDimensionMismatch, name)
	}

	seen := make(map[int]bool, len(targets)+len(controls))
	for _, q := range append(slices.Clone(targets), controls...) {
		if q < 0 {
			return nil, fmt.Errorf("%w: gate %s uses negative qubit %d", ErrInvalidQubitIndex, name, q)
		}
		if seen[q] {
			return nil, fmt.Errorf("%w: gate %s uses qubit %d more than once", ErrInvalidQubitIndex, name, q)
		}
		seen[q] = true
	}

	if want := 1 << len(targets); m.Dim() != want {
		return nil, fmt.Errorf(
			"%w: gate %s on %d targets needs a %d×%d matrix, got %d×%d",
			ErrDimensionMismatch, name, len(targets), want, want, m.Dim(), m.Dim(),
		)
	}

	if !m.IsUnitary(DefaultTolerance) {
		return nil, fmt.Errorf("%w: %s", ErrNonUnitaryGate, name)
	}

	return &Gate{
		name:     name,
		matrix:   m.clone(),
		targets:  slices.Clone(targets),
		controls: slices.Clone(controls),
	}, nil
}

/*
Must unwraps a gate constructor result and panics on error. It is meant for
static gate tables and tests, in the spirit of regexp.MustCompile.
*/
func Must(g *Gate, err error) *Gate {
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Gate) Name() string {
	return g.name
}

func (g *Gate) Targets() []int {
	return slices.Clone(g.targets)
}

func (g *Gate) Controls() []int {
	return slices.Clone(g.controls)
}

// Matrix returns a copy of the operator.
func (g *Gate) Matrix() *Matrix {
	return g.matrix.clone()
}

// Arity is the number of qubits the gate touches, targets plus controls.
func (g *Gate) Arity() int {
	return len(g.targets) + len(g.controls)
}

func (g *Gate) String() string {
	var b strings.Builder
	b.WriteString(g.name)
	for i, q := range g.controls {
		if i == 0 {
			b.WriteString(" c")
		} else {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%d", q)
	}
	for i, q := range g.targets {
		if i == 0 {
			b.WriteString(" t")
		} else {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%d", q)
	}
	return b.String()
}

/*
Validate checks the gate against an n-qubit register. It re-checks unitarity
so a gate that was somehow corrupted after construction is still refused
before it touches a vector.
*/
func (g *Gate) Validate(numQubits int) error {
	for _, q := range g.targets {
		if q >= numQubits {
			return fmt.Errorf("%w: %s targets qubit %d of a %d-qubit register", ErrInvalidQubitIndex, g.name, q, numQubits)
		}
	}

	for _, q := range g.controls {
		if q >= numQubits {
			return fmt.Errorf("%w: %s is controlled by qubit %d of a %d-qubit register", ErrInvalidQubitIndex, g.name, q, numQubits)
		}
	}

	if !g.matrix.IsUnitary(DefaultTolerance) {
		return fmt.Errorf("%w: %s", ErrNonUnitaryGate, g.name)
	}

	return nil
}

/*
Controlled returns a copy of g with additional control qubits appended.
*/
func Controlled(g *Gate, controls ...int) (*Gate, error) {
	return NewGate("c"+g.name, g.matrix, g.targets, append(slices.Clone(g.controls), controls...))
}

/*
Fuse combines two gates that act on the same targets and controls into one.

Program order is preserved: first is applied before second, so the fused
operator is second·first in matrix notation (the rightmost factor acts
first). Applying Fuse(a, b) equals applying a and then b.
*/
func Fuse(first, second *Gate) (*Gate, error) {
	if !slices.Equal(first.targets, second.targets) || !slices.Equal(first.controls, second.controls) {
		return nil, fmt.Errorf("%w: cannot fuse %s with %s", ErrDimensionMismatch, first, second)
	}

	m, err := second.matrix.Mul(first.matrix)
	if err != nil {
		return nil, err
	}

	return NewGate(first.name+";"+second.name, m, first.targets, first.controls)
}
