package qsim

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewGate(t *testing.T) {
	Convey("Given the gate constructor", t, func() {
		Convey("Every library gate is unitary", func() {
			for _, g := range []*Gate{
				Must(I(0)), Must(X(0)), Must(Y(0)), Must(Z(0)), Must(H(0)),
				Must(S(0)), Must(Sdg(0)), Must(T(0)), Must(Tdg(0)),
				Must(Phase(0, 0.7)), Must(RX(0, 1.1)), Must(RY(0, -2.3)), Must(RZ(0, 0.4)),
				Must(CNOT(0, 1)), Must(CZ(0, 1)), Must(SWAP(0, 1)), Must(Toffoli(0, 1, 2)),
			} {
				So(g.Matrix().IsUnitary(1e-12), ShouldBeTrue)
			}
		})

		Convey("A non-unitary matrix is rejected at construction", func() {
			m := mustMatrix([][]complex128{{1, 1}, {0, 1}})
			_, err := Unitary("shear", m, 0)
			So(errors.Is(err, ErrNonUnitaryGate), ShouldBeTrue)
		})

		Convey("A matrix of the wrong size is rejected", func() {
			_, err := Unitary("x2", matX, 0, 1)
			So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
		})

		Convey("Repeated and negative qubits are rejected", func() {
			_, err := CNOT(1, 1)
			So(errors.Is(err, ErrInvalidQubitIndex), ShouldBeTrue)

			_, err = H(-1)
			So(errors.Is(err, ErrInvalidQubitIndex), ShouldBeTrue)

			_, err = Controlled(Must(X(0)), 0)
			So(errors.Is(err, ErrInvalidQubitIndex), ShouldBeTrue)
		})

		Convey("Validate bounds the gate by the register", func() {
			g := Must(Toffoli(0, 1, 3))
			So(g.Validate(4), ShouldBeNil)
			So(errors.Is(g.Validate(3), ErrInvalidQubitIndex), ShouldBeTrue)
		})

		Convey("Accessors hand out copies", func() {
			g := Must(CNOT(0, 1))

			g.Targets()[0] = 7
			g.Controls()[0] = 7
			m := g.Matrix()
			m.data[0] = 5

			So(g.Targets(), ShouldResemble, []int{1})
			So(g.Controls(), ShouldResemble, []int{0})
			So(g.Matrix().At(0, 0), ShouldEqual, complex(0, 0))
			So(matX.At(0, 0), ShouldEqual, complex(0, 0))
		})

		Convey("T is the exact eighth-turn phase", func() {
			tm := Must(T(0)).Matrix()
			So(real(tm.At(1, 1)), ShouldAlmostEqual, math.Cos(math.Pi/4), 1e-12)
			So(imag(tm.At(1, 1)), ShouldAlmostEqual, math.Sin(math.Pi/4), 1e-12)

			st, err := Fuse(Must(T(0)), Must(T(0)))
			So(err, ShouldBeNil)
			So(cmplx.Abs(st.Matrix().At(1, 1)-1i), ShouldBeLessThan, 1e-12)
		})

		Convey("String lists controls before targets", func() {
			So(Must(Toffoli(0, 1, 2)).String(), ShouldEqual, "ccx c0,1 t2")
		})
	})
}

func TestFuse(t *testing.T) {
	Convey("Given two gates on the same qubit", t, func() {
		engine := NewEngine(WithConfig(serialConfig()))
		rng := newTestRand()
		h, s := Must(H(0)), Must(S(0))

		Convey("Fuse(first, second) equals applying first and then second", func() {
			hs := Must(Fuse(h, s))
			sh := Must(Fuse(s, h))

			for i := 0; i < 10; i++ {
				v := randomState(rng, 2)

				seq := v.Clone()
				So(engine.ApplyGate(seq, h), ShouldBeNil)
				So(engine.ApplyGate(seq, s), ShouldBeNil)

				fused := v.Clone()
				So(engine.ApplyGate(fused, hs), ShouldBeNil)
				So(fused.ApproxEqual(seq, 1e-12), ShouldBeTrue)

				reversed := v.Clone()
				So(engine.ApplyGate(reversed, sh), ShouldBeNil)
				So(reversed.ApproxEqual(seq, 1e-6), ShouldBeFalse)
			}
		})

		Convey("The fused matrix is second·first", func() {
			hs := Must(Fuse(h, s))
			want, err := s.Matrix().Mul(h.Matrix())
			So(err, ShouldBeNil)
			So(hs.Matrix().Rows(), ShouldResemble, want.Rows())
			So(hs.Name(), ShouldEqual, "h;s")
		})

		Convey("Gates on different qubits cannot be fused", func() {
			_, err := Fuse(h, Must(S(1)))
			So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
		})
	})
}

func TestMatrix(t *testing.T) {
	Convey("Given the matrix helper", t, func() {
		Convey("Ragged rows are rejected", func() {
			_, err := NewMatrix([][]complex128{{1, 0}, {0}})
			So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
		})

		Convey("A unitary times its dagger is the identity", func() {
			m := Must(RY(0, 0.9)).Matrix()
			p, err := m.Mul(m.Dagger())
			So(err, ShouldBeNil)

			for r := 0; r < 2; r++ {
				for c := 0; c < 2; c++ {
					So(cmplx.Abs(p.At(r, c)-Identity(2).At(r, c)), ShouldBeLessThan, 1e-12)
				}
			}
		})
	})
}
