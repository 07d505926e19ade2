package qsim

/*
Regulator decides whether the engine may use its acceleration backend.
It is a small control loop: it observes the engine's metrics, answers Limit
before each delegation, and is given the chance to Renormalize once the
engine is done with a gate.

CircuitBreaker is the regulator the engine installs by default; callers can
supply their own through WithRegulator, for example to pin a run to the CPU.
*/
type Regulator interface {
	// Observe hands the regulator the metrics it may read and publish to.
	Observe(metrics *Metrics)

	// Limit returns true when the backend must not be called.
	Limit() bool

	// Renormalize attempts to return to normal operation after a period
	// of limiting.
	Renormalize()

	// RecordSuccess and RecordFailure feed the outcome of each delegated
	// multiply back into the regulator.
	RecordSuccess()
	RecordFailure()
}
