package skyreduce

import "sync"

// taskQueue is the unbounded coordinator -> worker channel. Closing it is the
// termination signal: pop reports ok=false once the queue is closed.
type taskQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Task
	closed bool
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{}
	q.cond = sync.NewCond(&q.mu)

	return q
}

// push enqueues tasks without blocking. It returns false if the queue is closed.
func (q *taskQueue) push(tasks ...Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, tasks...)

	if len(tasks) == 1 {
		q.cond.Signal()
	} else {
		q.cond.Broadcast()
	}

	return true
}

// pop blocks until a task is available or the queue is closed.
func (q *taskQueue) pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}

	if q.closed {
		return Task{}, false
	}

	return q.shift(), true
}

// tryPop is the non-blocking pop used by inline pools.
func (q *taskQueue) tryPop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || len(q.items) == 0 {
		return Task{}, false
	}

	return q.shift(), true
}

// drop removes up to n tasks from the head of the queue.
func (q *taskQueue) drop(n int) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n = min(n, len(q.items))
	clear(q.items[:n])
	q.items = q.items[n:]

	return n
}

// close discards queued tasks and wakes every waiting worker.
// It returns the number of tasks dropped.
func (q *taskQueue) close() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0
	}

	dropped := len(q.items)
	q.items = nil
	q.closed = true
	q.cond.Broadcast()

	return dropped
}

func (q *taskQueue) shift() Task {
	t := q.items[0]
	q.items[0] = Task{}
	q.items = q.items[1:]

	return t
}
