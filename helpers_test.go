package qsim

import (
	"math"
	"math/bits"
	"math/rand/v2"
)

func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 42))
}

func serialConfig() *Config {
	cfg := DefaultConfig()
	cfg.Workers = 1
	return cfg
}

func randomState(rng *rand.Rand, numQubits int) *AmplitudeVector {
	amps := make([]complex128, 1<<numQubits)

	var norm float64
	for i := range amps {
		amps[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		norm += real(amps[i])*real(amps[i]) + imag(amps[i])*imag(amps[i])
	}

	scale := complex(1/math.Sqrt(norm), 0)
	for i := range amps {
		amps[i] *= scale
	}

	v, err := FromAmplitudes(amps)
	if err != nil {
		panic(err)
	}
	return v
}

// hadamard3 is H⊗H⊗H written out entrywise.
func hadamard3() *Matrix {
	rows := make([][]complex128, 8)
	for r := range rows {
		rows[r] = make([]complex128, 8)
		for c := range rows[r] {
			sign := 1.0
			if bits.OnesCount(uint(r&c))%2 == 1 {
				sign = -1
			}
			rows[r][c] = complex(sign/math.Sqrt(8), 0)
		}
	}
	return mustMatrix(rows)
}

/*
randomGates draws depth gates on distinct random qubits covering every
application path: single target, controlled, two-target and a dense
three-target operator.
*/
func randomGates(rng *rand.Rand, numQubits, depth int) []*Gate {
	gates := make([]*Gate, 0, depth)

	for len(gates) < depth {
		p := rng.Perm(numQubits)
		theta := rng.Float64() * 2 * math.Pi

		var g *Gate
		switch rng.IntN(9) {
		case 0:
			g = Must(H(p[0]))
		case 1:
			g = Must(X(p[0]))
		case 2:
			g = Must(Y(p[0]))
		case 3:
			g = Must(T(p[0]))
		case 4:
			g = Must(RX(p[0], theta))
		case 5:
			if numQubits < 2 {
				continue
			}
			g = Must(CNOT(p[0], p[1]))
		case 6:
			if numQubits < 2 {
				continue
			}
			g = Must(SWAP(p[0], p[1]))
		case 7:
			if numQubits < 3 {
				continue
			}
			g = Must(Toffoli(p[0], p[1], p[2]))
		case 8:
			if numQubits < 3 {
				continue
			}
			g = Must(Unitary("h3", hadamard3(), p[0], p[1], p[2]))
		}

		gates = append(gates, g)
	}

	return gates
}
