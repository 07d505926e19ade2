package qsim

// Worker drains chunk tasks from its pool.
type Worker struct {
	id   int
	pool *Pool
}

func (w *Worker) run() {
	for {
		select {
		case <-w.pool.ctx.Done():
			return
		case t := <-w.pool.tasks:
			w.process(t)
		}
	}
}

func (w *Worker) process(t task) {
	defer t.done.Done()
	t.fn(t.lo, t.hi)
}
