package skyreduce

import (
	"errors"
	"fmt"

	"pkg.jsn.cam/skyreduce/pkg/skyreduce/spill"
)

// Sentinel errors for common error conditions
var (
	// Worker-related errors
	ErrWorkerFailure = errors.New("worker failure")

	// Pool/channel errors
	ErrChannelClosed  = errors.New("channel closed")
	ErrPoolBusy       = errors.New("pool busy with another phase")
	ErrNothingPending = errors.New("no results pending")

	// Spill errors
	ErrSpillIO = spill.ErrIO

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
)

// WorkerError reports a mapper or reducer invocation that returned an error
// or panicked. It matches ErrWorkerFailure with errors.Is.
type WorkerError struct {
	Stage  Stage
	Index  int
	Worker int // -1 in inline mode
	Err    error
	Panic  any
}

func (e *WorkerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%s task %d panicked on worker %d: %v", e.Stage, e.Index, e.Worker, e.Panic)
	}

	return fmt.Sprintf("%s task %d failed on worker %d: %v", e.Stage, e.Index, e.Worker, e.Err)
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}

func (e *WorkerError) Is(target error) bool {
	return target == ErrWorkerFailure
}
