package qsim

import (
	"context"
	"sync"

	"github.com/theapemachine/errnie"
)

/*
Pool is a fixed set of workers that splits a range of independent amplitude
groups into contiguous chunks. One Run call is a batch: it returns when every
chunk has been processed. Work submitted after Close runs on the caller.
*/
type Pool struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	tasks   chan task
	workers []*Worker
	once    sync.Once
}

type task struct {
	lo, hi int
	fn     func(lo, hi int)
	done   *sync.WaitGroup
}

/*
NewPool starts size workers that live until ctx is cancelled or Close is
called.
*/
func NewPool(ctx context.Context, size int) *Pool {
	if size < 1 {
		size = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{
		ctx:     ctx,
		cancel:  cancel,
		tasks:   make(chan task),
		workers: make([]*Worker, 0, size),
	}

	for i := 0; i < size; i++ {
		p.startWorker(i)
	}

	errnie.Info("started pool with %d workers", size)

	return p
}

func (p *Pool) Size() int {
	return len(p.workers)
}

/*
Run calls fn over [0, n) split into one contiguous chunk per worker and
waits for all of them. fn must only touch state belonging to its own chunk.
*/
func (p *Pool) Run(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}

	chunks := min(len(p.workers), n)
	size := (n + chunks - 1) / chunks

	var done sync.WaitGroup

	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		done.Add(1)

		select {
		case p.tasks <- task{lo: lo, hi: hi, fn: fn, done: &done}:
		case <-p.ctx.Done():
			fn(lo, hi)
			done.Done()
		}
	}

	done.Wait()
}

func (p *Pool) startWorker(id int) {
	worker := &Worker{id: id, pool: p}
	p.workers = append(p.workers, worker)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		worker.run()
	}()
}

/*
Close stops the workers and waits for them to exit. It is safe to call more
than once.
*/
func (p *Pool) Close() {
	if p == nil {
		return
	}

	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
		errnie.Info("pool closed")
	})
}
