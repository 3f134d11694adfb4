package harness

import "sync"

// loop is the environment's single logical thread of script execution. All
// VM access happens on the loop goroutine; host goroutines hand work in via
// submit. Settling a promise on this goroutine drains its reaction jobs, so
// suspended scripts resume here too.
type loop struct {
	jobs chan func()
	done chan struct{}
	once sync.Once
}

func newLoop(depth int) *loop {
	if depth <= 0 {
		depth = 1
	}
	return &loop{
		jobs: make(chan func(), depth),
		done: make(chan struct{}),
	}
}

func (l *loop) run() {
	for {
		select {
		case <-l.done:
			return
		case job := <-l.jobs:
			job()
		}
	}
}

// submit enqueues a job for the loop goroutine. Blocks only while the queue
// is full; fails once the loop is closed.
func (l *loop) submit(job func()) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	select {
	case l.jobs <- job:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

func (l *loop) close() {
	l.once.Do(func() { close(l.done) })
}
