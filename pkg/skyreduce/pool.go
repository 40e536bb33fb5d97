package skyreduce

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
)

// Config holds pool configuration
type Config struct {
	Workers int         // Number of workers (default: runtime.NumCPU())
	Inline  bool        // Run every task on the caller's goroutine (debug mode)
	Logger  *log.Logger // Defaults to log.Default()
}

// Pool is a fixed set of workers fed by an unbounded task queue and drained
// through a result channel of capacity 2 × workers.
//
// A Pool serves one coordinator: only one phase may drain it at a time.
// The first worker failure poisons the pool; it must then be closed.
type Pool struct {
	config  Config
	workers int
	log     *log.Logger

	tasks   *taskQueue
	results chan Result

	// ctx is cancelled when the pool is closed or has failed. Tasks receive it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	err         error
	closed      bool
	busy        bool
	outstanding int

	closeOnce sync.Once
}

// NewPool creates a pool and starts its workers
func NewPool(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if cfg.Inline {
		workers = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		config:  cfg,
		workers: workers,
		log:     logger,
		tasks:   newTaskQueue(),
		ctx:     ctx,
		cancel:  cancel,
	}

	if cfg.Inline {
		p.log.Printf("[POOL] Started in inline mode")
		return p
	}

	p.results = make(chan Result, 2*workers)

	for id := range workers {
		p.wg.Add(1)
		go p.work(id)
	}

	p.log.Printf("[POOL] Started %d workers", workers)

	return p
}

// Workers returns the number of workers (1 for an inline pool).
func (p *Pool) Workers() int {
	return p.workers
}

// Inline reports whether the pool runs tasks on the caller's goroutine.
func (p *Pool) Inline() bool {
	return p.config.Inline
}

// Err returns the failure that poisoned the pool, if any.
func (p *Pool) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// Buffered returns the number of completed results waiting to be drained.
func (p *Pool) Buffered() int {
	return len(p.results)
}

// Submit enqueues tasks. It never blocks on a saturated pool.
func (p *Pool) Submit(tasks ...Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}

	if p.closed || !p.tasks.push(tasks...) {
		return ErrChannelClosed
	}

	p.outstanding += len(tasks)

	return nil
}

// Next blocks until a worker delivers a result. A failed task is returned as
// a *WorkerError and poisons the pool. Cancelling ctx also poisons the pool,
// since the results of in-flight tasks can no longer be accounted for.
func (p *Pool) Next(ctx context.Context) (Result, error) {
	if err := p.checkPending(); err != nil {
		return Result{}, err
	}

	if p.config.Inline {
		return p.nextInline(ctx)
	}

	select {
	case res := <-p.results:
		return p.settle(res)
	case <-p.ctx.Done():
		return Result{}, p.failureOr(ErrChannelClosed)
	case <-ctx.Done():
		p.fail(ctx.Err())
		return Result{}, ctx.Err()
	}
}

// Close sends the termination signal to every worker, drops queued tasks and
// waits for the workers to exit. Tasks already running are allowed to finish.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		dropped := p.tasks.close()
		p.cancel()
		p.wg.Wait()

		if dropped > 0 {
			p.log.Printf("[POOL] Closed, dropped %d queued tasks", dropped)
		} else {
			p.log.Printf("[POOL] Closed")
		}
	})

	return nil
}

// work is the dispatch loop of one worker
func (p *Pool) work(id int) {
	defer p.wg.Done()

	for {
		task, ok := p.tasks.pop()
		if !ok {
			return
		}

		res := p.execute(id, task)

		select {
		case p.results <- res:
		case <-p.ctx.Done():
			return
		}
	}
}

// execute runs one task, turning errors and panics into a *WorkerError
func (p *Pool) execute(worker int, task Task) (res Result) {
	res.Index = task.Index

	defer func() {
		if r := recover(); r != nil {
			p.log.Printf("[WORKER:%d] Recovered from panic in %s task %d: %v", worker, task.Stage, task.Index, r)
			res.Value = nil
			res.Err = &WorkerError{Stage: task.Stage, Index: task.Index, Worker: worker, Panic: r}
		}
	}()

	v, err := task.Run(p.ctx)
	if err != nil {
		res.Err = &WorkerError{Stage: task.Stage, Index: task.Index, Worker: worker, Err: err}
		return res
	}

	res.Value = v

	return res
}

func (p *Pool) nextInline(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		p.fail(err)
		return Result{}, err
	}

	task, ok := p.tasks.tryPop()
	if !ok {
		return Result{}, p.failureOr(ErrChannelClosed)
	}

	return p.settle(p.execute(-1, task))
}

// settle accounts for one drained result
func (p *Pool) settle(res Result) (Result, error) {
	p.mu.Lock()
	p.outstanding--
	p.mu.Unlock()

	if res.Err != nil {
		p.fail(res.Err)
		return res, res.Err
	}

	return res, nil
}

// discard drops n owed results, used when a consumer stops draining early.
func (p *Pool) discard(ctx context.Context, n int) {
	if p.config.Inline {
		dropped := p.tasks.drop(n)

		p.mu.Lock()
		p.outstanding -= dropped
		p.mu.Unlock()

		return
	}

	for range n {
		if _, err := p.Next(ctx); err != nil {
			return
		}
	}
}

func (p *Pool) checkPending() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}

	if p.closed {
		return ErrChannelClosed
	}

	if p.outstanding <= 0 {
		return ErrNothingPending
	}

	return nil
}

// fail records the first failure and stops the pool from accepting work.
func (p *Pool) fail(err error) {
	p.mu.Lock()
	first := p.err == nil
	if first {
		p.err = err
	}
	p.mu.Unlock()

	if !first {
		return
	}

	dropped := p.tasks.close()
	p.cancel()

	p.log.Printf("[POOL] Job failed, dropped %d queued tasks: %v", dropped, err)
}

func (p *Pool) failureOr(err error) error {
	if ferr := p.Err(); ferr != nil {
		return ferr
	}

	return err
}

// acquire marks the pool as drained by one phase.
func (p *Pool) acquire() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}

	if p.closed {
		return ErrChannelClosed
	}

	if p.busy {
		return ErrPoolBusy
	}

	p.busy = true

	return nil
}

func (p *Pool) release() {
	p.mu.Lock()
	p.busy = false
	p.mu.Unlock()
}

func (p *Pool) String() string {
	return fmt.Sprintf("Pool(workers=%d, inline=%v)", p.workers, p.config.Inline)
}
