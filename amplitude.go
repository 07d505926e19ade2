package qsim

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
)

// DefaultTolerance bounds norm drift and unitarity checks.
const DefaultTolerance = 1e-9

/*
MaxRegisterQubits is the largest register any constructor will allocate,
independent of Config.MaxQubits. At 16 bytes per amplitude it keeps the
buffer under 2⁴⁸ bytes on 64-bit platforms and 2³¹ on 32-bit ones.
*/
const MaxRegisterQubits = 27 + 17*(bits.UintSize/64)

/*
AmplitudeVector holds the 2ⁿ complex amplitudes of an n-qubit register.
Index i encodes a computational basis state with bit q of i giving the state
of qubit q. The buffer is flat and is mutated in place by the engine.
*/
type AmplitudeVector struct {
	amps      []complex128
	numQubits int
}

/*
NewAmplitudeVector returns the |0…0⟩ state of an n-qubit register.
*/
func NewAmplitudeVector(numQubits int) (*AmplitudeVector, error) {
	return NewBasisState(numQubits, 0)
}

/*
NewBasisState returns the computational basis state |index⟩ of an n-qubit
register.
*/
func NewBasisState(numQubits, index int) (*AmplitudeVector, error) {
	if numQubits < 1 {
		return nil, fmt.Errorf("%w: register needs at least one qubit, got %d", ErrInvalidQubitIndex, numQubits)
	}

	if numQubits > MaxRegisterQubits {
		return nil, fmt.Errorf("%w: %d qubits, limit %d", ErrRegisterTooLarge, numQubits, MaxRegisterQubits)
	}

	size := 1 << numQubits

	if index < 0 || index >= size {
		return nil, fmt.Errorf("%w: basis index %d outside [0, %d)", ErrInvalidQubitIndex, index, size)
	}

	amps := make([]complex128, size)
	amps[index] = 1

	return &AmplitudeVector{amps: amps, numQubits: numQubits}, nil
}

/*
FromAmplitudes builds a vector from caller-supplied amplitudes. The length
must be a power of two no smaller than 2 and the vector must be normalized
within DefaultTolerance. The slice is copied.
*/
func FromAmplitudes(amps []complex128) (*AmplitudeVector, error) {
	n := len(amps)
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: %d amplitudes is not a power of two", ErrDimensionMismatch, n)
	}

	v := &AmplitudeVector{
		amps:      append([]complex128(nil), amps...),
		numQubits: bits.TrailingZeros(uint(n)),
	}

	if drift := math.Abs(v.Norm() - 1); drift > DefaultTolerance {
		return nil, fmt.Errorf("%w: initial norm off by %g", ErrNormalizationDrift, drift)
	}

	return v, nil
}

func (v *AmplitudeVector) NumQubits() int {
	return v.numQubits
}

func (v *AmplitudeVector) Len() int {
	return len(v.amps)
}

// At returns the amplitude of basis state i.
func (v *AmplitudeVector) At(i int) complex128 {
	return v.amps[i]
}

// Amplitudes returns a copy of the amplitude buffer.
func (v *AmplitudeVector) Amplitudes() []complex128 {
	return append([]complex128(nil), v.amps...)
}

func (v *AmplitudeVector) Clone() *AmplitudeVector {
	return &AmplitudeVector{
		amps:      append([]complex128(nil), v.amps...),
		numQubits: v.numQubits,
	}
}

/*
Norm returns the Euclidean norm, the square root of the summed squared
magnitudes.
*/
func (v *AmplitudeVector) Norm() float64 {
	var sum float64
	for _, a := range v.amps {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}

// Probability applies the Born rule to basis state i.
func (v *AmplitudeVector) Probability(i int) float64 {
	a := v.amps[i]
	return real(a)*real(a) + imag(a)*imag(a)
}

func (v *AmplitudeVector) Probabilities() []float64 {
	probs := make([]float64, len(v.amps))
	for i := range v.amps {
		probs[i] = v.Probability(i)
	}
	return probs
}

// QubitProbability is the marginal distribution of a single qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

/*
QubitProbabilities returns the marginal P(0) and P(1) for every qubit in the
register.
*/
func (v *AmplitudeVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, v.numQubits)

	for i := range v.amps {
		p := v.Probability(i)
		for q := 0; q < v.numQubits; q++ {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}

	return probs
}

/*
ApproxEqual reports whether both vectors have the same size and every
amplitude differs by at most tol.
*/
func (v *AmplitudeVector) ApproxEqual(other *AmplitudeVector, tol float64) bool {
	if other == nil || len(v.amps) != len(other.amps) {
		return false
	}

	for i := range v.amps {
		if cmplx.Abs(v.amps[i]-other.amps[i]) > tol {
			return false
		}
	}

	return true
}

// checkNorm reports ErrNormalizationDrift when the norm leaves 1 by more than tol.
func (v *AmplitudeVector) checkNorm(tol float64) error {
	if drift := math.Abs(v.Norm() - 1); drift > tol {
		return fmt.Errorf("%w: norm off by %g (tolerance %g)", ErrNormalizationDrift, drift, tol)
	}
	return nil
}
