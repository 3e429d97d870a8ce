package concurrent

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrScheduleTimeout = errors.New("schedule error: timed out")
	ErrPoolClosed      = errors.New("schedule error: pool closed")
)

// Pool is a bounded goroutine pool. Tasks run on at most size goroutines; idle goroutines pick tasks
// from a queue of queueSize pending tasks.
type Pool struct {
	sem  chan struct{}
	work chan func()

	done      chan struct{}
	closeOnce sync.Once
}

func NewPool(size, queueSize int) *Pool {
	if size < 1 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		sem:  make(chan struct{}, size),
		work: make(chan func(), queueSize),
		done: make(chan struct{}),
	}
}

// Spawn starts n goroutines ahead of time, bounded by the pool size.
func (p *Pool) Spawn(n int) {
	for i := 0; i < n; i++ {
		select {
		case p.sem <- struct{}{}:
			go p.worker(nil)
		default:
			return
		}
	}
}

// Schedule blocks until a goroutine picks the task up or the pool is closed.
func (p *Pool) Schedule(task func()) error {
	return p.schedule(task, nil)
}

// ScheduleTimeout is Schedule with an upper bound on how long to wait for a free goroutine.
func (p *Pool) ScheduleTimeout(timeout time.Duration, task func()) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	return p.schedule(task, timer.C)
}

func (p *Pool) schedule(task func(), timeout <-chan time.Time) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	default:
	}

	select {
	case <-timeout:
		return ErrScheduleTimeout
	case <-p.done:
		return ErrPoolClosed
	case p.work <- task:
		return nil
	case p.sem <- struct{}{}:
		go p.worker(task)
		return nil
	}
}

func (p *Pool) worker(task func()) {
	defer func() { <-p.sem }()

	if task != nil {
		task()
	}
	for {
		select {
		case task := <-p.work:
			task()
		case <-p.done:
			return
		}
	}
}

// Close stops the idle goroutines and waits for running tasks to return. Queued tasks that no
// goroutine has picked up are dropped.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		// every goroutine holds a slot until it exits
		for i := 0; i < cap(p.sem); i++ {
			p.sem <- struct{}{}
		}
	})
}
