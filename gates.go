package qsim

import (
	"math"
	"math/cmplx"
)

// Standard operators, built once and never handed out directly.
var (
	matI = mustMatrix([][]complex128{
		{1, 0},
		{0, 1},
	})

	matX = mustMatrix([][]complex128{
		{0, 1},
		{1, 0},
	})

	matY = mustMatrix([][]complex128{
		{0, -1i},
		{1i, 0},
	})

	matZ = mustMatrix([][]complex128{
		{1, 0},
		{0, -1},
	})

	matH = mustMatrix([][]complex128{
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	})

	matS = mustMatrix([][]complex128{
		{1, 0},
		{0, 1i},
	})

	matSdg = mustMatrix([][]complex128{
		{1, 0},
		{0, -1i},
	})

	matT = mustMatrix([][]complex128{
		{1, 0},
		{0, cmplx.Exp(complex(0, math.Pi/4))},
	})

	matTdg = mustMatrix([][]complex128{
		{1, 0},
		{0, cmplx.Exp(complex(0, -math.Pi/4))},
	})

	matSWAP = mustMatrix([][]complex128{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	})
)

func single(name string, m *Matrix, q int) (*Gate, error) {
	return NewGate(name, m, []int{q}, nil)
}

// I is the identity on qubit q.
func I(q int) (*Gate, error) { return single("id", matI, q) }

// X is the Pauli-X (NOT) gate.
func X(q int) (*Gate, error) { return single("x", matX, q) }

// Y is the Pauli-Y gate.
func Y(q int) (*Gate, error) { return single("y", matY, q) }

// Z is the Pauli-Z gate.
func Z(q int) (*Gate, error) { return single("z", matZ, q) }

// H is the Hadamard gate.
func H(q int) (*Gate, error) { return single("h", matH, q) }

// S is the phase gate diag(1, i).
func S(q int) (*Gate, error) { return single("s", matS, q) }

// Sdg is the inverse of S, diag(1, -i).
func Sdg(q int) (*Gate, error) { return single("sdg", matSdg, q) }

// T is diag(1, e^{iπ/4}), the square root of S.
func T(q int) (*Gate, error) { return single("t", matT, q) }

// Tdg is the inverse of T.
func Tdg(q int) (*Gate, error) { return single("tdg", matTdg, q) }

/*
Phase is diag(1, e^{iθ}).
*/
func Phase(q int, theta float64) (*Gate, error) {
	return single("p", mustMatrix([][]complex128{
		{1, 0},
		{0, cmplx.Exp(complex(0, theta))},
	}), q)
}

/*
RX is exp(-iθX/2).
*/
func RX(q int, theta float64) (*Gate, error) {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))

	return single("rx", mustMatrix([][]complex128{
		{c, s},
		{s, c},
	}), q)
}

/*
RY is exp(-iθY/2).
*/
func RY(q int, theta float64) (*Gate, error) {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)

	return single("ry", mustMatrix([][]complex128{
		{c, -s},
		{s, c},
	}), q)
}

/*
RZ is exp(-iθZ/2) = diag(e^{-iθ/2}, e^{iθ/2}).
*/
func RZ(q int, theta float64) (*Gate, error) {
	return single("rz", mustMatrix([][]complex128{
		{cmplx.Exp(complex(0, -theta/2)), 0},
		{0, cmplx.Exp(complex(0, theta/2))},
	}), q)
}

// CNOT flips target when control is 1.
func CNOT(control, target int) (*Gate, error) {
	return NewGate("cx", matX, []int{target}, []int{control})
}

// CZ applies Z to target when control is 1.
func CZ(control, target int) (*Gate, error) {
	return NewGate("cz", matZ, []int{target}, []int{control})
}

// SWAP exchanges the states of qubits a and b.
func SWAP(a, b int) (*Gate, error) {
	return NewGate("swap", matSWAP, []int{a, b}, nil)
}

// Toffoli is the controlled-controlled-X gate.
func Toffoli(control1, control2, target int) (*Gate, error) {
	return NewGate("ccx", matX, []int{target}, []int{control1, control2})
}

/*
Unitary wraps an arbitrary operator. The matrix is validated like any other
gate; see NewGate for the target ordering convention.
*/
func Unitary(name string, m *Matrix, targets ...int) (*Gate, error) {
	return NewGate(name, m, targets, nil)
}
