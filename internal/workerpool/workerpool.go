// Package workerpool provides a generic bounded worker pool.
package workerpool

import (
	"context"
	"runtime"
	"sync"
)

// DefaultWorkers is used when a caller passes a non-positive worker count.
var DefaultWorkers = runtime.NumCPU()

// Pool distributes jobs across a fixed number of goroutines and collects results.
type Pool[Job any, Result any] struct {
	numWorkers int
	jobs       chan Job
	results    chan Result
	wg         sync.WaitGroup
}

// New creates a pool. numWorkers <= 0 selects DefaultWorkers, and the pool is
// never larger than numJobs when numJobs is known.
func New[Job any, Result any](numWorkers, numJobs int) *Pool[Job, Result] {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	if numJobs > 0 {
		numWorkers = min(numWorkers, numJobs)
	}

	return &Pool[Job, Result]{
		numWorkers: numWorkers,
		jobs:       make(chan Job, max(numJobs, 0)),
		results:    make(chan Result, max(numJobs, 0)),
	}
}

// Workers returns the number of goroutines Start launches.
func (p *Pool[Job, Result]) Workers() int {
	return p.numWorkers
}

// Start launches the workers. workerFn is called once per job.
func (p *Pool[Job, Result]) Start(workerFn func(Job) Result) {
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

// Submit queues a job. It blocks when the queue is full.
func (p *Pool[Job, Result]) Submit(job Job) {
	p.jobs <- job
}

// Close stops accepting jobs. Results is closed once every worker returns.
func (p *Pool[Job, Result]) Close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Results returns the results channel.
func (p *Pool[Job, Result]) Results() <-chan Result {
	return p.results
}

type indexed[T any] struct {
	i int
	v T
}

// Map runs fn over jobs on at most workers goroutines and returns the results
// in job order. Jobs not yet started when ctx is cancelled receive ctx's error
// through fn, which should check ctx first.
func Map[Job any, Result any](ctx context.Context, workers int, jobs []Job, fn func(context.Context, Job) Result) []Result {
	out := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return out
	}

	p := New[indexed[Job], indexed[Result]](workers, len(jobs))
	p.Start(func(j indexed[Job]) indexed[Result] {
		return indexed[Result]{i: j.i, v: fn(ctx, j.v)}
	})
	for i, job := range jobs {
		p.Submit(indexed[Job]{i: i, v: job})
	}
	p.Close()

	for r := range p.Results() {
		out[r.i] = r.v
	}
	return out
}
