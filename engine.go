package qsim

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/theapemachine/errnie"
)

/*
Engine applies gates to amplitude vectors in place. A gate on k targets with
c controls touches the vector as 2^(n-k-c) independent groups of 2^k
amplitudes; each group is multiplied by the gate's small matrix, so no
operator on the full register is ever built.

An Engine may be shared between goroutines as long as each vector is handed
to one call at a time.
*/
type Engine struct {
	config     *Config
	backend    Backend
	regulator  Regulator
	metrics    *Metrics
	pool       *Pool
	fullMatrix bool
	onFallback func(error)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

/*
WithConfig replaces the default configuration. The config is used as given;
callers loading it from a file get it validated by LoadConfig.
*/
func WithConfig(config *Config) EngineOption {
	return func(e *Engine) {
		e.config = config
	}
}

/*
WithBackend installs the accelerated multiply used for dense groups.
*/
func WithBackend(backend Backend) EngineOption {
	return func(e *Engine) {
		e.backend = backend
	}
}

/*
WithFullMatrix sends every group product through the backend regardless of
the gate's size.
*/
func WithFullMatrix() EngineOption {
	return func(e *Engine) {
		e.fullMatrix = true
	}
}

/*
WithMetrics shares a metrics set between engines, typically one registered
on the process-wide Prometheus registry.
*/
func WithMetrics(metrics *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

/*
WithRegulator replaces the circuit breaker that decides whether dense
groups may reach the backend.

Parameters:
  - regulator: Consulted with Limit before every backend multiply and told of
    each success or failure

Returns:
  - EngineOption: Applied by NewEngine
*/
func WithRegulator(regulator Regulator) EngineOption {
	return func(e *Engine) {
		e.regulator = regulator
	}
}

/*
WithFallbackHook registers a callback invoked with the BackendError every
time a delegated multiply fails and is recomputed on the CPU.
*/
func WithFallbackHook(fn func(error)) EngineOption {
	return func(e *Engine) {
		e.onFallback = fn
	}
}

/*
NewEngine builds an engine. Without options it uses DefaultConfig, the CPU
backend, a circuit breaker built from the config, and private metrics.
*/
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}

	for _, opt := range opts {
		opt(e)
	}

	if e.config == nil {
		e.config = DefaultConfig()
	}

	if e.backend == nil {
		e.backend = NewCPUBackend()
	}

	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}

	if e.regulator == nil {
		e.regulator = NewCircuitBreaker(
			e.config.BreakerMaxFailures,
			e.config.BreakerResetTimeout,
			e.config.BreakerHalfOpenMax,
		)
	}

	e.regulator.Observe(e.metrics)

	if e.config.Workers > 1 {
		e.pool = NewPool(context.Background(), e.config.Workers)
	}

	errnie.Info(
		"engine ready: backend=%s workers=%d parallel>=%d dense>=%d",
		e.backend.Name(), e.config.Workers, e.config.ParallelThreshold, e.config.DenseThreshold,
	)

	return e
}

func (e *Engine) Config() Config {
	return *e.config
}

// Metrics returns the metrics set the engine records into.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

func (e *Engine) Backend() Backend {
	return e.backend
}

// Close stops the engine's workers.
func (e *Engine) Close() {
	e.pool.Close()
}

/*
NewState returns |0…0⟩ on n qubits, refusing registers above MaxQubits.
*/
func (e *Engine) NewState(numQubits int) (*AmplitudeVector, error) {
	if numQubits > e.config.MaxQubits {
		return nil, fmt.Errorf("%w: %d qubits, limit %d", ErrRegisterTooLarge, numQubits, e.config.MaxQubits)
	}

	return NewAmplitudeVector(numQubits)
}

/*
ApplyGate applies g to v in place. The gate is validated against the
register first; on a validation error v is untouched. With CheckNorm set,
a norm that leaves 1 by more than the configured tolerance afterwards is
reported as ErrNormalizationDrift.
*/
func (e *Engine) ApplyGate(v *AmplitudeVector, g *Gate) error {
	n := v.NumQubits()

	if n > e.config.MaxQubits {
		return fmt.Errorf("%w: %d qubits, limit %d", ErrRegisterTooLarge, n, e.config.MaxQubits)
	}

	if err := g.Validate(n); err != nil {
		return err
	}

	start := time.Now()
	lay := newLayout(n, g)

	var path string

	switch {
	case e.fullMatrix || len(g.targets) >= e.config.DenseThreshold:
		path = e.applyDense(v, g, lay)
	case len(g.targets) == 1:
		path = PathSingle
		e.parallel(n, lay.groups, func(lo, hi int) {
			applySingle(v.amps, g.matrix, lay, lo, hi)
		})
	default:
		path = PathGroup
		e.parallel(n, lay.groups, func(lo, hi int) {
			applyGroups(v.amps, g.matrix, lay, lo, hi)
		})
	}

	e.regulator.Renormalize()
	e.metrics.recordGate(path, start)

	return e.verify(v, g.name)
}

/*
ApplyDiagonalPhase multiplies the amplitude of every index the oracle marks
by -1. It is a single pass over the vector.
*/
func (e *Engine) ApplyDiagonalPhase(v *AmplitudeVector, oracle Oracle) error {
	start := time.Now()

	e.parallel(v.NumQubits(), len(v.amps), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if oracle(i) {
				v.amps[i] = -v.amps[i]
			}
		}
	})

	e.metrics.recordGate(PathGroup, start)

	return e.verify(v, "oracle")
}

// ApplyHadamardAll applies H to every qubit.
func (e *Engine) ApplyHadamardAll(v *AmplitudeVector) error {
	for q := 0; q < v.NumQubits(); q++ {
		g, err := H(q)
		if err != nil {
			return err
		}

		if err := e.ApplyGate(v, g); err != nil {
			return err
		}
	}

	return nil
}

/*
ReflectZero applies 2|0⟩⟨0| − I: every amplitude except that of |0…0⟩
changes sign.
*/
func (e *Engine) ReflectZero(v *AmplitudeVector) error {
	start := time.Now()

	e.parallel(v.NumQubits(), len(v.amps), func(lo, hi int) {
		for i := max(lo, 1); i < hi; i++ {
			v.amps[i] = -v.amps[i]
		}
	})

	e.metrics.recordGate(PathGroup, start)

	return e.verify(v, "reflect0")
}

func (e *Engine) verify(v *AmplitudeVector, op string) error {
	if !e.config.CheckNorm {
		return nil
	}

	if err := v.checkNorm(e.config.Tolerance); err != nil {
		return fmt.Errorf("after %s: %w", op, err)
	}

	return nil
}

// parallel runs fn over [0, count) on the pool once the register is large enough.
func (e *Engine) parallel(numQubits, count int, fn func(lo, hi int)) {
	if e.pool == nil || numQubits < e.config.ParallelThreshold || count < 2 {
		fn(0, count)
		return
	}

	e.pool.Run(count, fn)
}

/*
applyDense hands each group to the backend from the calling goroutine.
A failed multiply is recorded with the regulator and recomputed on the CPU;
once the regulator limits, the remaining groups skip the backend. The
returned path is PathCPU if any group fell back, PathLimited if groups only
skipped the backend, and PathDense otherwise.
*/
func (e *Engine) applyDense(v *AmplitudeVector, g *Gate, lay *layout) string {
	sub := make([]complex128, len(lay.offsets))
	out := make([]complex128, len(lay.offsets))
	path := PathDense
	warned := false

	for group := 0; group < lay.groups; group++ {
		base := lay.base(group)

		for j, off := range lay.offsets {
			sub[j] = v.amps[base|off]
		}

		result, err := e.delegate(g.matrix, sub)
		if err != nil {
			var be *BackendError
			switch {
			case errors.As(err, &be):
				path = PathCPU

				if !warned {
					errnie.Info("backend %s failed on %s, using cpu: %v", e.backend.Name(), g.name, err)
					warned = true
				}
			case path == PathDense:
				path = PathLimited
			}

			g.matrix.MulVec(out, sub)
			result = out
		}

		for j, off := range lay.offsets {
			v.amps[base|off] = result[j]
		}
	}

	return path
}

/*
delegate returns ErrBackendUnavailable without calling the backend while the
regulator is limiting, which is not counted as a fallback.
*/
func (e *Engine) delegate(m *Matrix, sub []complex128) ([]complex128, error) {
	if e.regulator.Limit() {
		return nil, ErrBackendUnavailable
	}

	e.metrics.recordBackendCall()

	result, err := multiplyChecked(e.backend, m, slices.Clone(sub))
	if err != nil {
		e.regulator.RecordFailure()
		e.metrics.recordFallback()

		if e.onFallback != nil {
			e.onFallback(err)
		}

		return nil, err
	}

	e.regulator.RecordSuccess()

	return result, nil
}

/*
layout precomputes how a gate addresses the flat buffer. Group g is turned
into the index of its first member by depositing the bits of g into the
positions not used by the gate and setting every control bit; offsets then
enumerate the 2^k target assignments in local matrix order.
*/
type layout struct {
	groups      int
	fixed       []int
	controlMask int
	offsets     []int
}

func newLayout(numQubits int, g *Gate) *layout {
	fixed := append(slices.Clone(g.targets), g.controls...)
	slices.Sort(fixed)

	lay := &layout{
		groups:  1 << (numQubits - len(fixed)),
		fixed:   fixed,
		offsets: make([]int, 1<<len(g.targets)),
	}

	for _, c := range g.controls {
		lay.controlMask |= 1 << c
	}

	k := len(g.targets)
	for j := range lay.offsets {
		for b, q := range g.targets {
			if j&(1<<(k-1-b)) != 0 {
				lay.offsets[j] |= 1 << q
			}
		}
	}

	return lay
}

// base inserts a zero at every fixed position of group, lowest first.
func (lay *layout) base(group int) int {
	x := group
	for _, p := range lay.fixed {
		low := x & (1<<p - 1)
		x = (x^low)<<1 | low
	}
	return x | lay.controlMask
}

func applySingle(amps []complex128, m *Matrix, lay *layout, lo, hi int) {
	m00, m01 := m.data[0], m.data[1]
	m10, m11 := m.data[2], m.data[3]
	step := lay.offsets[1]

	for group := lo; group < hi; group++ {
		i0 := lay.base(group)
		i1 := i0 | step

		a0, a1 := amps[i0], amps[i1]
		amps[i0] = m00*a0 + m01*a1
		amps[i1] = m10*a0 + m11*a1
	}
}

func applyGroups(amps []complex128, m *Matrix, lay *layout, lo, hi int) {
	sub := make([]complex128, len(lay.offsets))
	out := make([]complex128, len(lay.offsets))

	for group := lo; group < hi; group++ {
		base := lay.base(group)

		for j, off := range lay.offsets {
			sub[j] = amps[base|off]
		}

		m.MulVec(out, sub)

		for j, off := range lay.offsets {
			amps[base|off] = out[j]
		}
	}
}
