package concurrent

import (
	"context"
	"sync"
)

type JobFunc[T any, G any] func(ctx context.Context, job T) G

// Indexed pairs a job result with the position its job was submitted at.
type Indexed[G any] struct {
	Index  int
	Result G
}

type indexedJob[T any] struct {
	index int
	job   T
}

// WorkerPool runs jobs on a fixed number of goroutines. Results come back tagged with the submit index
// so callers can restore submission order.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan indexedJob[T]
	results    chan Indexed[G]
	wg         sync.WaitGroup
	submitted  int
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if jobQueueSize < 0 {
		jobQueueSize = 0
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan indexedJob[T], jobQueueSize),
		results:    make(chan Indexed[G], jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(ctx context.Context, jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for ij := range wp.jobQueue {
		wp.results <- Indexed[G]{Index: ij.index, Result: jobFunc(ctx, ij.job)}
	}
}

func (wp *WorkerPool[T, G]) Start(ctx context.Context, jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, jobFunc)
	}
}

// AddJob enqueues a job. It must not be called concurrently or after Close.
func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- indexedJob[T]{index: wp.submitted, job: job}
	wp.submitted++
}

func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

// Wait blocks until every worker has exited, then closes the results channel.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) CollectResults() <-chan Indexed[G] {
	return wp.results
}

// Run submits jobs, waits for all of them and returns the results in submission order.
func Run[T any, G any](ctx context.Context, numWorkers int, jobs []T, jobFunc JobFunc[T, G]) []G {
	wp := NewWorkerPool[T, G](numWorkers, len(jobs))
	wp.Start(ctx, jobFunc)
	for _, job := range jobs {
		wp.AddJob(job)
	}
	wp.Close()
	wp.Wait()

	out := make([]G, len(jobs))
	for r := range wp.CollectResults() {
		out[r.Index] = r.Result
	}
	return out
}
