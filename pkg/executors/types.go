package executors

import (
	"context"

	"pkg.jsn.cam/skyreduce/pkg/skyreduce"
)

// KeyValue is one line of executor output.
type KeyValue = skyreduce.KeyValue[string, string]

// Emitter receives the pairs produced by Map, Combine and Reduce.
type Emitter = skyreduce.Emitter[string, string]

// Worker is a line-oriented mapper/reducer pair. Map receives one chunk of
// input lines; Reduce receives every value emitted for one key.
type Worker interface {
	Map(ctx context.Context, chunk []string, emit Emitter) error
	Reduce(ctx context.Context, key string, values []string, emit Emitter) error
	Description() string
}

// Combiner is an optional interface for workers that can pre-aggregate the
// output of a single chunk before it reaches the coordinator. The values a
// Combine emits must be accepted by Reduce.
type Combiner interface {
	Combine(key string, values []string, emit Emitter) error
}
