package qsim

import (
	"fmt"
	"slices"
	"strings"
)

/*
Circuit is a frozen, ordered gate sequence for a fixed register size. Every
gate has been checked against the register, so executing a circuit cannot
fail on qubit indices.
*/
type Circuit struct {
	numQubits int
	gates     []*Gate
}

/*
NewCircuit validates every gate against an n-qubit register and freezes the
sequence. The first invalid gate is reported with its position.
*/
func NewCircuit(numQubits int, gates ...*Gate) (*Circuit, error) {
	if numQubits < 1 {
		return nil, fmt.Errorf("%w: circuit needs at least one qubit, got %d", ErrInvalidQubitIndex, numQubits)
	}

	for i, g := range gates {
		if g == nil {
			return nil, fmt.Errorf("gate %d is nil", i)
		}

		if err := g.Validate(numQubits); err != nil {
			return nil, fmt.Errorf("gate %d: %w", i, err)
		}
	}

	return &Circuit{
		numQubits: numQubits,
		gates:     slices.Clone(gates),
	}, nil
}

func (c *Circuit) NumQubits() int {
	return c.numQubits
}

func (c *Circuit) Len() int {
	return len(c.gates)
}

// Gates returns the sequence in program order.
func (c *Circuit) Gates() []*Gate {
	return slices.Clone(c.gates)
}

/*
Append returns a new circuit with gates added after the existing ones.
*/
func (c *Circuit) Append(gates ...*Gate) (*Circuit, error) {
	return NewCircuit(c.numQubits, append(slices.Clone(c.gates), gates...)...)
}

func (c *Circuit) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "circuit(%d qubits, %d gates)", c.numQubits, len(c.gates))
	for i, g := range c.gates {
		fmt.Fprintf(&b, "\n  %3d  %s", i, g)
	}
	return b.String()
}
