package qsim

import (
	"fmt"
	"math"
	"time"

	"github.com/theapemachine/errnie"
)

/*
Oracle reports whether a basis-state index is marked. Grover's search treats
it as the diagonal operator with -1 on marked states and +1 elsewhere.
*/
type Oracle func(index int) bool

// MarkIndices returns an oracle marking exactly the given indices.
func MarkIndices(indices ...int) Oracle {
	marked := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		marked[i] = struct{}{}
	}

	return func(index int) bool {
		_, ok := marked[index]
		return ok
	}
}

/*
GroverResult is the state after amplification, before any measurement.
*/
type GroverResult struct {
	State              *AmplitudeVector
	Iterations         int
	MarkedCount        int
	SuccessProbability float64 // total probability on marked states
	Best               Outcome // most likely basis state
}

/*
Grover drives amplitude amplification on an engine.
*/
type Grover struct {
	engine      *Engine
	markedCount int
	hasCount    bool
	iterations  int
	hasIters    bool
}

// GroverOption configures a Grover search.
type GroverOption func(*Grover)

/*
WithMarkedCount fixes M for the iteration count instead of counting the
oracle's marks. Zero is rejected by Search with ErrNoMarkedState.
*/
func WithMarkedCount(m int) GroverOption {
	return func(g *Grover) {
		g.markedCount = m
		g.hasCount = true
	}
}

// WithIterations overrides the computed number of rounds.
func WithIterations(k int) GroverOption {
	return func(g *Grover) {
		g.iterations = k
		g.hasIters = true
	}
}

/*
NewGrover creates a search that applies its gates through engine.

Parameters:
  - engine: The engine that runs the Hadamard, oracle and diffusion steps
  - opts: Overrides for the marked count or the number of rounds

Returns:
  - *Grover: A search ready to run with Search
*/
func NewGrover(engine *Engine, opts ...GroverOption) *Grover {
	g := &Grover{engine: engine}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

/*
OptimalIterations returns the number of oracle/diffusion rounds that brings
the marked probability closest to 1 for m marked states out of 2^n.

With θ = asin(√(m/N)) each round rotates the state by 2θ, so the best round
count is ⌊π/(4θ)⌋. It is at least 1 while m < N and 0 once every state is
marked. m < 1 means the count is unknown and is taken as 1.

The small-angle estimate round(π/4·√(N/m)) overshoots by a round in some
cases: for n=2, m=1 it gives 2 (P = 0.25, against 1.0 after one round) and
for n=7, m=1 it gives 9 (P ≈ 0.987, against ≈ 0.996 after the 8 returned
here).
*/
func OptimalIterations(numQubits, m int) int {
	n := 1 << numQubits

	if m < 1 {
		m = 1
	}

	if m >= n {
		return 0
	}

	theta := math.Asin(math.Sqrt(float64(m) / float64(n)))

	return max(1, int(math.Floor(math.Pi/(4*theta))))
}

/*
Search amplifies the states the oracle marks on an n-qubit register: it
prepares the uniform superposition, then repeats the oracle phase flip
followed by the diffusion H⊗n·(2|0⟩⟨0| − I)·H⊗n.
*/
func (g *Grover) Search(numQubits int, oracle Oracle) (*GroverResult, error) {
	if g.hasCount && g.markedCount < 1 {
		return nil, fmt.Errorf("%w: marked count %d", ErrNoMarkedState, g.markedCount)
	}

	v, err := g.engine.NewState(numQubits)
	if err != nil {
		return nil, err
	}

	marked := make([]bool, v.Len())
	found := 0

	for i := range marked {
		if oracle(i) {
			marked[i] = true
			found++
		}
	}

	if found == 0 {
		return nil, fmt.Errorf("%w: oracle marks none of %d states", ErrNoMarkedState, v.Len())
	}

	m := found
	if g.hasCount {
		m = g.markedCount
	}

	iterations := OptimalIterations(numQubits, m)
	if g.hasIters {
		iterations = max(0, g.iterations)
	}

	errnie.Info("grover: %d qubits, %d marked, %d iterations", numQubits, m, iterations)

	start := time.Now()
	phase := func(i int) bool { return marked[i] }

	if err := g.engine.ApplyHadamardAll(v); err != nil {
		return nil, err
	}

	for k := 0; k < iterations; k++ {
		if err := g.engine.ApplyDiagonalPhase(v, phase); err != nil {
			return nil, fmt.Errorf("grover iteration %d oracle: %w", k, err)
		}

		if err := g.diffuse(v); err != nil {
			return nil, fmt.Errorf("grover iteration %d diffusion: %w", k, err)
		}
	}

	g.engine.Metrics().recordGrover(iterations)

	result := &GroverResult{
		State:       v,
		Iterations:  iterations,
		MarkedCount: m,
		Best:        MostLikely(v),
	}

	for i, ok := range marked {
		if ok {
			result.SuccessProbability += v.Probability(i)
		}
	}

	errnie.Info(
		"grover: done in %s, P(marked)=%.5f, best %s",
		time.Since(start), result.SuccessProbability, result.Best.Bitstring(numQubits),
	)

	return result, nil
}

func (g *Grover) diffuse(v *AmplitudeVector) error {
	if err := g.engine.ApplyHadamardAll(v); err != nil {
		return err
	}

	if err := g.engine.ReflectZero(v); err != nil {
		return err
	}

	return g.engine.ApplyHadamardAll(v)
}
