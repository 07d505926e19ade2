package qsim

import (
	"fmt"
	"math/cmplx"
)

/*
Matrix is a dense square complex matrix stored row-major. Gate operators are
small (2^k × 2^k for a k-qubit gate), so a flat buffer is all they need.
*/
type Matrix struct {
	dim  int
	data []complex128
}

/*
NewMatrix copies rows into a Matrix. Every row must have len(rows) entries.
*/
func NewMatrix(rows [][]complex128) (*Matrix, error) {
	d := len(rows)
	if d == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrDimensionMismatch)
	}

	m := &Matrix{dim: d, data: make([]complex128, d*d)}
	for r, row := range rows {
		if len(row) != d {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrDimensionMismatch, r, len(row), d)
		}
		copy(m.data[r*d:], row)
	}

	return m, nil
}

func mustMatrix(rows [][]complex128) *Matrix {
	m, err := NewMatrix(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// Identity returns the d × d identity.
func Identity(d int) *Matrix {
	m := &Matrix{dim: d, data: make([]complex128, d*d)}
	for i := 0; i < d; i++ {
		m.data[i*d+i] = 1
	}
	return m
}

func (m *Matrix) Dim() int {
	return m.dim
}

func (m *Matrix) At(r, c int) complex128 {
	return m.data[r*m.dim+c]
}

// Rows returns a copy of the matrix as a slice of rows.
func (m *Matrix) Rows() [][]complex128 {
	rows := make([][]complex128, m.dim)
	for r := range rows {
		rows[r] = append([]complex128(nil), m.data[r*m.dim:(r+1)*m.dim]...)
	}
	return rows
}

func (m *Matrix) clone() *Matrix {
	return &Matrix{dim: m.dim, data: append([]complex128(nil), m.data...)}
}

/*
Mul returns the product m·other. In operator terms other acts first.
*/
func (m *Matrix) Mul(other *Matrix) (*Matrix, error) {
	if m.dim != other.dim {
		return nil, fmt.Errorf("%w: %d×%d times %d×%d", ErrDimensionMismatch, m.dim, m.dim, other.dim, other.dim)
	}

	d := m.dim
	out := &Matrix{dim: d, data: make([]complex128, d*d)}

	for r := 0; r < d; r++ {
		for k := 0; k < d; k++ {
			a := m.data[r*d+k]
			if a == 0 {
				continue
			}
			for c := 0; c < d; c++ {
				out.data[r*d+c] += a * other.data[k*d+c]
			}
		}
	}

	return out, nil
}

// Dagger returns the conjugate transpose.
func (m *Matrix) Dagger() *Matrix {
	d := m.dim
	out := &Matrix{dim: d, data: make([]complex128, d*d)}
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			out.data[c*d+r] = cmplx.Conj(m.data[r*d+c])
		}
	}
	return out
}

/*
IsUnitary checks U†U = I entrywise within tol.
*/
func (m *Matrix) IsUnitary(tol float64) bool {
	d := m.dim

	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			var sum complex128
			for k := 0; k < d; k++ {
				sum += cmplx.Conj(m.data[k*d+r]) * m.data[k*d+c]
			}

			var want complex128
			if r == c {
				want = 1
			}

			if cmplx.Abs(sum-want) > tol {
				return false
			}
		}
	}

	return true
}

/*
MulVec computes m·v into dst, which must not alias v. Both slices must have
length Dim().
*/
func (m *Matrix) MulVec(dst, v []complex128) {
	d := m.dim
	for r := 0; r < d; r++ {
		var sum complex128
		row := m.data[r*d : (r+1)*d]
		for c, a := range row {
			sum += a * v[c]
		}
		dst[r] = sum
	}
}
