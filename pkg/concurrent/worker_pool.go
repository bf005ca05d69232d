package concurrent

import (
	"sync"
)

type JobFunc[J any, R any] func(job J) R

// WorkerPool fans jobs out over a fixed worker count. Used by the map widget
// to resolve the visible tile set off the caller's path.
type WorkerPool[J any, R any] struct {
	numWorkers int
	jobQueue   chan J
	results    chan R
	wg         sync.WaitGroup
}

func NewWorkerPool[J any, R any](numWorkers, jobQueueSize int) *WorkerPool[J, R] {
	return &WorkerPool[J, R]{
		numWorkers: numWorkers,
		jobQueue:   make(chan J, jobQueueSize),
		results:    make(chan R, jobQueueSize),
	}
}

func (wp *WorkerPool[J, R]) worker(jobFunc JobFunc[J, R]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- jobFunc(job)
	}
}

func (wp *WorkerPool[J, R]) Start(jobFunc JobFunc[J, R]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(jobFunc)
	}
}

// Wait blocks until every queued job finished, then closes the results
// channel. Call Close first.
func (wp *WorkerPool[J, R]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[J, R]) AddJob(job J) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[J, R]) CollectResults() chan R {
	return wp.results
}

func (wp *WorkerPool[J, R]) Close() {
	close(wp.jobQueue)
}
