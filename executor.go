package qsim

import (
	"fmt"

	"github.com/theapemachine/errnie"
)

/*
Executor runs circuits on an engine. It never modifies the vector it is
given: execution starts from a clone.
*/
type Executor struct {
	engine *Engine
}

func NewExecutor(engine *Engine) *Executor {
	return &Executor{engine: engine}
}

/*
Run applies every gate of c in program order to a copy of initial and
returns the final state.
*/
func (ex *Executor) Run(c *Circuit, initial *AmplitudeVector) (*AmplitudeVector, error) {
	return ex.RunUpTo(c, initial, c.Len())
}

/*
RunUpTo applies the first steps gates of c. steps is clamped to the
circuit's length; zero returns a copy of initial.
*/
func (ex *Executor) RunUpTo(c *Circuit, initial *AmplitudeVector, steps int) (*AmplitudeVector, error) {
	s, err := ex.Stepper(c, initial)
	if err != nil {
		return nil, err
	}

	for i := 0; i < steps && !s.Done(); i++ {
		if err := s.Step(); err != nil {
			return nil, err
		}
	}

	errnie.Info("ran %d of %d gates on %d qubits", s.Position(), c.Len(), c.NumQubits())

	return s.state, nil
}

/*
Stepper returns a cursor that applies c one gate at a time, for callers that
want to inspect intermediate states.
*/
func (ex *Executor) Stepper(c *Circuit, initial *AmplitudeVector) (*Stepper, error) {
	if initial.NumQubits() != c.NumQubits() {
		return nil, fmt.Errorf(
			"%w: %d-qubit circuit on a %d-qubit vector",
			ErrDimensionMismatch, c.NumQubits(), initial.NumQubits(),
		)
	}

	return &Stepper{
		engine:  ex.engine,
		circuit: c,
		state:   initial.Clone(),
	}, nil
}

// Stepper walks a circuit gate by gate.
type Stepper struct {
	engine   *Engine
	circuit  *Circuit
	state    *AmplitudeVector
	position int
}

/*
Step applies the next gate. Stepping past the end is a no-op.
*/
func (s *Stepper) Step() error {
	if s.Done() {
		return nil
	}

	g := s.circuit.gates[s.position]
	if err := s.engine.ApplyGate(s.state, g); err != nil {
		return fmt.Errorf("step %d (%s): %w", s.position, g, err)
	}

	s.position++

	return nil
}

// Next applies the next gate and reports whether one was applied.
func (s *Stepper) Next() (bool, error) {
	if s.Done() {
		return false, nil
	}

	if err := s.Step(); err != nil {
		return false, err
	}

	return true, nil
}

// State returns a copy of the current state.
func (s *Stepper) State() *AmplitudeVector {
	return s.state.Clone()
}

// Position is the number of gates applied so far.
func (s *Stepper) Position() int {
	return s.position
}

// Last returns the gate applied by the most recent step, or nil.
func (s *Stepper) Last() *Gate {
	if s.position == 0 {
		return nil
	}
	return s.circuit.gates[s.position-1]
}

// Done reports whether every gate of the circuit has been applied.
func (s *Stepper) Done() bool {
	return s.position >= len(s.circuit.gates)
}
