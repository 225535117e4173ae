package posekit

import (
	"sync"
)

// Pool is a simple worker pool to open multiple Workers of the same
// Model across the available compute devices
type Pool struct {
	// pool of workers
	workers chan Worker
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a new worker pool of the given size.  Workers are
// created through the engine with backends cycled via getPoolBackend.
func NewPool(size int, eng Engine, model Model) (*Pool, error) {
	p := &Pool{
		workers: make(chan Worker, size),
		size:    size,
	}

	for i := 0; i < size; i++ {
		w, err := eng.NewWorker(model, getPoolBackend(i))

		if err != nil {
			// close any instances that may have been created before
			// receiving the error
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(w)
	}

	return p, nil
}

// Get a worker from the pool
func (p *Pool) Get() Worker {
	return <-p.workers
}

// Return a worker to the pool
func (p *Pool) Return(w Worker) {
	select {
	case p.workers <- w:
	default:
		// pool is full or closed
	}
}

// Close the pool and all workers in it
func (p *Pool) Close() {
	p.close.Do(func() {
		// close channel
		close(p.workers)

		// close all workers
		for next := range p.workers {
			_ = next.Close()
		}
	})
}

// getPoolBackend takes an integer and returns the backend hint to use
func getPoolBackend(i int) Backend {

	if i == 0 {
		return BackendAuto
	}

	return BackendCPU
}
