// Package workerpool provides a small generic worker pool for parallel
// document decoding.
package workerpool

import (
	"runtime"
	"sync"
)

// DefaultWorkers caps the pool when no explicit size is given.
var DefaultWorkers = min(runtime.NumCPU(), 16)

// WorkerPool distributes jobs across a fixed set of goroutines and collects results.
type WorkerPool[Job any, Result any] struct {
	numWorkers int
	jobs       chan Job
	results    chan Result
	wg         sync.WaitGroup
}

// New creates a worker pool with the given number of workers.
// If numWorkers is 0 or negative, it defaults to DefaultWorkers.
// If numJobs is less than numWorkers, the pool is sized to match numJobs.
func New[Job any, Result any](numWorkers, numJobs int) *WorkerPool[Job, Result] {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	if numJobs > 0 {
		numWorkers = min(numWorkers, numJobs)
	}
	numWorkers = max(numWorkers, 1)

	return &WorkerPool[Job, Result]{
		numWorkers: numWorkers,
		jobs:       make(chan Job, max(numJobs, 0)),
		results:    make(chan Result, max(numJobs, 0)),
	}
}

// Start launches the workers. workerFn is called once per submitted job.
func (p *WorkerPool[Job, Result]) Start(workerFn func(Job) Result) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.results <- workerFn(job)
			}
		}()
	}
}

// Submit adds a job to the queue.
func (p *WorkerPool[Job, Result]) Submit(job Job) {
	p.jobs <- job
}

// Close stops accepting jobs. The results channel is closed once every
// worker has finished.
func (p *WorkerPool[Job, Result]) Close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Results returns the channel of worker outputs, in completion order.
func (p *WorkerPool[Job, Result]) Results() <-chan Result {
	return p.results
}

type indexed[T any] struct {
	index int
	value T
}

type outcome[T any] struct {
	index int
	value T
	err   error
}

// Map applies fn to every input in parallel and returns the outputs in input
// order. When any call fails, the error of the lowest-indexed failing input is
// returned so the reported failure does not depend on scheduling.
func Map[In any, Out any](numWorkers int, inputs []In, fn func(In) (Out, error)) ([]Out, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	pool := New[indexed[In], outcome[Out]](numWorkers, len(inputs))
	pool.Start(func(job indexed[In]) outcome[Out] {
		v, err := fn(job.value)
		return outcome[Out]{index: job.index, value: v, err: err}
	})
	for i, in := range inputs {
		pool.Submit(indexed[In]{index: i, value: in})
	}
	pool.Close()

	out := make([]Out, len(inputs))
	firstErr := -1
	var err error
	for r := range pool.Results() {
		if r.err != nil {
			if firstErr == -1 || r.index < firstErr {
				firstErr = r.index
				err = r.err
			}
			continue
		}
		out[r.index] = r.value
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
