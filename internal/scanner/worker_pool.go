package scanner

import (
	"context"
	"sync"
)

// offsetJob is a contiguous run of offsets [start, end)
type offsetJob struct {
	start int
	end   int
}

// distanceFunc scores the candidate window at offset t
type distanceFunc func(t int) (float64, error)

// workerPool fills a pre-sized distance buffer. Jobs cover disjoint offset ranges, so every
// slot is written by exactly one worker.
type workerPool struct {
	workerCount int
	jobQueue    chan offsetJob
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	score       distanceFunc
	out         []float64

	errOnce sync.Once
	err     error
}

func newWorkerPool(ctx context.Context, workerCount, jobCount int, score distanceFunc, out []float64) *workerPool {
	ctx, cancel := context.WithCancel(ctx)
	return &workerPool{
		workerCount: workerCount,
		jobQueue:    make(chan offsetJob, jobCount),
		ctx:         ctx,
		cancel:      cancel,
		score:       score,
		out:         out,
	}
}

// Start launches the workers
func (wp *workerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Submit queues a job, failing once the pool is cancelled
func (wp *workerPool) Submit(job offsetJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// Wait closes the queue, waits for the workers and returns the first failure
func (wp *workerPool) Wait() error {
	close(wp.jobQueue)
	wp.wg.Wait()
	wp.cancel()
	return wp.err
}

func (wp *workerPool) fail(err error) {
	wp.errOnce.Do(func() {
		wp.err = err
		wp.cancel()
	})
}

func (wp *workerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}
			if err := wp.process(job); err != nil {
				wp.fail(err)
				return
			}
		case <-wp.ctx.Done():
			wp.fail(wp.ctx.Err())
			return
		}
	}
}

func (wp *workerPool) process(job offsetJob) error {
	for t := job.start; t < job.end; t++ {
		if err := wp.ctx.Err(); err != nil {
			return err
		}
		d, err := wp.score(t)
		if err != nil {
			return err
		}
		wp.out[t] = d
	}
	return nil
}

// splitOffsets cuts [0, total) into contiguous jobs, several per worker so uneven jobs balance
func splitOffsets(total, workers int) []offsetJob {
	if total <= 0 {
		return nil
	}
	jobs := workers * 4
	if jobs > total {
		jobs = total
	}
	size := (total + jobs - 1) / jobs

	out := make([]offsetJob, 0, jobs)
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		out = append(out, offsetJob{start: start, end: end})
	}
	return out
}
