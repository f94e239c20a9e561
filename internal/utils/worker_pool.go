package utils

import (
	"sync"
)

// WorkerPool bounds how many tasks run concurrently. The sweep uses it to
// fan out alert deliveries without spawning a goroutine per alert.
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	waitGroup sync.WaitGroup
}

// NewWorkerPool creates a pool with the specified number of workers and a
// queue of the same capacity.
func NewWorkerPool(workers int) *WorkerPool {
	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers),
	}

	pool.waitGroup.Add(workers)
	for i := 0; i < workers; i++ {
		go pool.worker()
	}

	return pool
}

func (wp *WorkerPool) worker() {
	defer wp.waitGroup.Done()
	for task := range wp.taskQueue {
		task()
	}
}

// Submit enqueues a task, blocking while the queue is full.
func (wp *WorkerPool) Submit(task func()) {
	wp.taskQueue <- task
}

// Shutdown stops accepting tasks and waits for in-flight ones to finish.
func (wp *WorkerPool) Shutdown() {
	close(wp.taskQueue)
	wp.waitGroup.Wait()
}
