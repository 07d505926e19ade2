package qsim

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCircuit(t *testing.T) {
	Convey("Given a Bell-pair circuit", t, func() {
		c, err := NewCircuit(2, Must(H(0)), Must(CNOT(0, 1)))
		So(err, ShouldBeNil)

		Convey("Gates come back in program order and as a copy", func() {
			gates := c.Gates()
			So(gates[0].Name(), ShouldEqual, "h")
			So(gates[1].Name(), ShouldEqual, "cx")

			gates[0] = nil
			So(c.Gates()[0], ShouldNotBeNil)
		})

		Convey("Append builds a new circuit", func() {
			longer, err := c.Append(Must(Z(1)))
			So(err, ShouldBeNil)
			So(longer.Len(), ShouldEqual, 3)
			So(c.Len(), ShouldEqual, 2)
		})

		Convey("Gates beyond the register fail fast", func() {
			_, err := NewCircuit(2, Must(H(0)), Must(X(2)))
			So(errors.Is(err, ErrInvalidQubitIndex), ShouldBeTrue)

			_, err = c.Append(Must(Toffoli(0, 1, 2)))
			So(errors.Is(err, ErrInvalidQubitIndex), ShouldBeTrue)
		})
	})
}

func TestExecutor(t *testing.T) {
	Convey("Given an executor", t, func() {
		engine := NewEngine(WithConfig(serialConfig()))
		ex := NewExecutor(engine)
		rng := newTestRand()

		Convey("Run produces a Bell pair and leaves the input alone", func() {
			c, _ := NewCircuit(2, Must(H(0)), Must(CNOT(0, 1)))
			initial, _ := NewAmplitudeVector(2)

			out, err := ex.Run(c, initial)
			So(err, ShouldBeNil)
			So(out.Probability(0), ShouldAlmostEqual, 0.5, 1e-12)
			So(out.Probability(3), ShouldAlmostEqual, 0.5, 1e-12)
			So(initial.At(0), ShouldEqual, complex(1, 0))
		})

		Convey("Two runs of the same circuit agree exactly", func() {
			c, err := NewCircuit(5, randomGates(rng, 5, 80)...)
			So(err, ShouldBeNil)
			initial := randomState(rng, 5)

			a, err := ex.Run(c, initial)
			So(err, ShouldBeNil)
			b, err := ex.Run(c, initial)
			So(err, ShouldBeNil)
			So(a.ApproxEqual(b, 0), ShouldBeTrue)
		})

		Convey("A vector of the wrong size is refused", func() {
			c, _ := NewCircuit(3, Must(H(0)))
			v, _ := NewAmplitudeVector(2)

			_, err := ex.Run(c, v)
			So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
		})

		Convey("In step mode", func() {
			c, _ := NewCircuit(2, Must(X(0)), Must(CNOT(0, 1)), Must(X(0)))
			initial, _ := NewAmplitudeVector(2)

			s, err := ex.Stepper(c, initial)
			So(err, ShouldBeNil)

			Convey("Each step exposes the intermediate state", func() {
				want := []int{0b01, 0b11, 0b10}

				for i := 0; ; i++ {
					ok, err := s.Next()
					So(err, ShouldBeNil)
					if !ok {
						So(i, ShouldEqual, 3)
						break
					}

					So(s.State().Probability(want[i]), ShouldAlmostEqual, 1, 1e-12)
					So(s.Position(), ShouldEqual, i+1)
					So(s.Last(), ShouldEqual, c.gates[i])
				}

				So(s.Done(), ShouldBeTrue)
				So(s.Step(), ShouldBeNil)
			})

			Convey("State hands out copies", func() {
				So(s.Step(), ShouldBeNil)
				snap := s.State()
				So(s.Step(), ShouldBeNil)
				So(snap.Probability(0b01), ShouldAlmostEqual, 1, 1e-12)
			})

			Convey("RunUpTo matches stepping", func() {
				out, err := ex.RunUpTo(c, initial, 2)
				So(err, ShouldBeNil)
				So(out.Probability(0b11), ShouldAlmostEqual, 1, 1e-12)

				out, err = ex.RunUpTo(c, initial, 99)
				So(err, ShouldBeNil)
				So(out.Probability(0b10), ShouldAlmostEqual, 1, 1e-12)
			})
		})
	})
}
