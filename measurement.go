package qsim

import (
	"fmt"
	"math"
	"strings"
)

/*
RandomSource supplies uniform samples in [0, 1). *rand.Rand from math/rand
and math/rand/v2 both satisfy it; seed it for reproducible runs.
*/
type RandomSource interface {
	Float64() float64
}

// Outcome is a measured basis state.
type Outcome struct {
	Index       int
	Probability float64
}

/*
Bitstring renders the outcome as |q_{n-1}…q_0⟩, highest qubit first, which
is how the index reads in binary.
*/
func (o Outcome) Bitstring(numQubits int) string {
	return "|" + Bits(o.Index, numQubits) + ">"
}

// Bits formats index as numQubits binary digits.
func Bits(index, numQubits int) string {
	var b strings.Builder
	for q := numQubits - 1; q >= 0; q-- {
		if index&(1<<q) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

/*
Sample draws one basis state by the Born rule without changing v. It walks
the cumulative distribution and takes the first index whose running sum
reaches the draw; trailing rounding slack goes to the last non-zero state.
*/
func Sample(v *AmplitudeVector, rng RandomSource) (Outcome, error) {
	total := 0.0
	for i := range v.amps {
		total += v.Probability(i)
	}

	if total == 0 {
		return Outcome{}, fmt.Errorf("%w: vector has zero norm", ErrZeroProbability)
	}

	return sampleFrom(v, rng.Float64()*total), nil
}

func sampleFrom(v *AmplitudeVector, r float64) Outcome {
	cumulative := 0.0
	last := 0

	for i := range v.amps {
		p := v.Probability(i)
		if p == 0 {
			continue
		}

		last = i
		cumulative += p

		if r < cumulative {
			return Outcome{Index: i, Probability: p}
		}
	}

	return Outcome{Index: last, Probability: v.Probability(last)}
}

/*
Collapse projects v onto basis state index: every other amplitude becomes
zero and the survivor is rescaled to unit magnitude, keeping its phase.
*/
func Collapse(v *AmplitudeVector, index int) error {
	if index < 0 || index >= len(v.amps) {
		return fmt.Errorf("%w: basis index %d outside [0, %d)", ErrInvalidQubitIndex, index, len(v.amps))
	}

	p := v.Probability(index)
	if p == 0 {
		return fmt.Errorf("%w: cannot collapse onto %s", ErrZeroProbability, Bits(index, v.numQubits))
	}

	a := v.amps[index] / complex(math.Sqrt(p), 0)

	clear(v.amps)
	v.amps[index] = a

	return nil
}

/*
Measure samples v and collapses it onto the outcome.
*/
func Measure(v *AmplitudeVector, rng RandomSource) (Outcome, error) {
	outcome, err := Sample(v, rng)
	if err != nil {
		return Outcome{}, err
	}

	return outcome, Collapse(v, outcome.Index)
}

/*
SampleCounts repeats Sample shots times and returns a histogram keyed by
basis index.
*/
func SampleCounts(v *AmplitudeVector, rng RandomSource, shots int) (map[int]int, error) {
	if shots < 1 {
		return nil, fmt.Errorf("shots must be at least 1, got %d", shots)
	}

	counts := make(map[int]int)

	for i := 0; i < shots; i++ {
		outcome, err := Sample(v, rng)
		if err != nil {
			return nil, err
		}
		counts[outcome.Index]++
	}

	return counts, nil
}

/*
MostLikely returns the basis state with the highest probability, the lowest
index winning ties.
*/
func MostLikely(v *AmplitudeVector) Outcome {
	best := Outcome{}
	for i := range v.amps {
		if p := v.Probability(i); p > best.Probability {
			best = Outcome{Index: i, Probability: p}
		}
	}
	return best
}
