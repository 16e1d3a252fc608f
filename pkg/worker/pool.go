// Package worker offloads blocking calls (desktop automation, network
// scraping, synchronous model clients) from the request path. The contract:
// a handler may block for a while; it must never run on the caller's
// goroutine when dispatched through the pool.
package worker

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Job is one unit of offloaded work. Jobs sharing a Key run on the same
// worker and therefore serialize against each other.
type Job struct {
	Key     string
	Handler func(ctx context.Context) error
}

// Stats is a point-in-time snapshot of pool counters.
type Stats struct {
	NumWorkers      int   `json:"num_workers"`
	QueueSize       int   `json:"queue_size"`
	TotalDispatched int64 `json:"total_dispatched"`
	TotalProcessed  int64 `json:"total_processed"`
	TotalDropped    int64 `json:"total_dropped"`
	TotalErrors     int64 `json:"total_errors"`
}

// Pool runs a fixed set of workers, each with its own queue.
type Pool struct {
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopped    int32

	totalDispatched int64
	totalProcessed  int64
	totalDropped    int64
	totalErrors     int64
}

type worker struct {
	id       int
	jobQueue chan Job
	ctx      context.Context
	cancel   context.CancelFunc
	pool     *Pool
}

// NewPool creates a pool with the given worker count and per-worker queue
// size, applying safe defaults for non-positive values.
func NewPool(numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		numWorkers: numWorkers,
		queueSize:  queueSize,
		workers:    make([]*worker, numWorkers),
	}
}

// Start launches the workers under the given context.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			jobQueue: make(chan Job, p.queueSize),
			ctx:      workerCtx,
			cancel:   cancel,
			pool:     p,
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(&p.wg)
	}
	logrus.Infof("[WORKER_POOL] Started with %d workers, queue size %d", p.numWorkers, p.queueSize)
}

// TryDispatch enqueues a job without blocking. Returns false when the shard
// queue is full or the pool is stopped.
func (p *Pool) TryDispatch(job Job) bool {
	if atomic.LoadInt32(&p.stopped) == 1 {
		atomic.AddInt64(&p.totalDropped, 1)
		return false
	}

	shard := p.shardFor(job.Key)
	atomic.AddInt64(&p.totalDispatched, 1)

	sent := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		select {
		case p.workers[shard].jobQueue <- job:
			return true
		default:
			return false
		}
	}()

	if !sent {
		atomic.AddInt64(&p.totalDropped, 1)
		logrus.Warnf("[WORKER_POOL] Worker %d queue full (or stopped), dropping job %q", shard, job.Key)
	}
	return sent
}

// Do dispatches a job and waits for it to finish, returning the handler's
// error. Used where the caller needs the blocking call's outcome.
func (p *Pool) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	ok := p.TryDispatch(Job{
		Key: key,
		Handler: func(jobCtx context.Context) error {
			err := fn(jobCtx)
			done <- err
			return err
		},
	})
	if !ok {
		return context.DeadlineExceeded
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains the pool gracefully.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)
		logrus.Info("[WORKER_POOL] Stopping workers...")

		for _, w := range p.workers {
			w.cancel()
			close(w.jobQueue)
		}
		p.wg.Wait()

		logrus.Info("[WORKER_POOL] All workers stopped")
	})
}

// GetStats returns a snapshot of the pool counters.
func (p *Pool) GetStats() Stats {
	return Stats{
		NumWorkers:      p.numWorkers,
		QueueSize:       p.queueSize,
		TotalDispatched: atomic.LoadInt64(&p.totalDispatched),
		TotalProcessed:  atomic.LoadInt64(&p.totalProcessed),
		TotalDropped:    atomic.LoadInt64(&p.totalDropped),
		TotalErrors:     atomic.LoadInt64(&p.totalErrors),
	}
}

func (p *Pool) shardFor(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.numWorkers))
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				logrus.Debugf("[WORKER_POOL] Worker %d shutting down", w.id)
				return
			}
			w.process(job)

		case <-w.ctx.Done():
			w.drainQueue()
			return
		}
	}
}

func (w *worker) process(job Job) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&w.pool.totalErrors, 1)
			logrus.Errorf("[WORKER_POOL] Worker %d panic on job %q: %v", w.id, job.Key, r)
		}
		atomic.AddInt64(&w.pool.totalProcessed, 1)
	}()

	if err := job.Handler(w.ctx); err != nil {
		atomic.AddInt64(&w.pool.totalErrors, 1)
		logrus.WithError(err).Errorf("[WORKER_POOL] Worker %d job %q failed", w.id, job.Key)
	}
}

// drainQueue finishes pending jobs before shutdown.
func (w *worker) drainQueue() {
	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			w.process(job)
		default:
			return
		}
	}
}
