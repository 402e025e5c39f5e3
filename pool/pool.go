// ABOUTME: Small worker pool for running background file writes
// ABOUTME: Provides submit-and-wait so callers can flush queued work before exiting

package pool

import (
	"runtime"
	"sync"
)

// WorkerPool manages a pool of worker goroutines for background task execution
type WorkerPool struct {
	workers  int
	taskChan chan func()
	workerWg sync.WaitGroup // tracks worker goroutines lifetime
	taskWg   sync.WaitGroup // tracks submitted tasks completion
	closed   sync.Once
}

// NewWorkerPool creates a worker pool with the given number of workers
// A worker count below 1 sizes the pool to available CPUs.
// With a single worker, tasks run in submission order.
func NewWorkerPool(workers, bufferSize int) *WorkerPool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	if bufferSize < 0 {
		bufferSize = 0
	}

	pool := &WorkerPool{
		workers:  workers,
		taskChan: make(chan func(), bufferSize),
	}

	for range workers {
		pool.workerWg.Add(1)

		go func() {
			defer pool.workerWg.Done()

			for task := range pool.taskChan {
				pool.run(task)
			}
		}()
	}

	return pool
}

// run executes one task and marks it complete even if it panics
func (p *WorkerPool) run(task func()) {
	defer p.taskWg.Done()
	defer func() {
		_ = recover() // keep the worker alive
	}()

	task()
}

// Workers returns the number of worker goroutines
func (p *WorkerPool) Workers() int {
	return p.workers
}

// Submit adds a task to the pool
// Blocks if the task channel is full
func (p *WorkerPool) Submit(task func()) {
	p.taskWg.Add(1)
	p.taskChan <- task
}

// Wait blocks until all submitted tasks have completed
func (p *WorkerPool) Wait() {
	p.taskWg.Wait()
}

// Close shuts down the worker pool and waits for all workers to exit
// Safe to call more than once.
func (p *WorkerPool) Close() {
	p.closed.Do(func() {
		close(p.taskChan)
	})
	p.workerWg.Wait()
}
