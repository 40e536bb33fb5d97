package executors

import (
	"context"
	"fmt"
	"iter"

	"pkg.jsn.cam/skyreduce/pkg/skyreduce"
	"pkg.jsn.cam/skyreduce/pkg/skyreduce/spill"
)

// RunConfig selects the map-reduce variant used by Run.
type RunConfig struct {
	Big       bool   // Spill map output to disk
	DiskIndex bool   // With Big, keep the spill index in bbolt
	SpillDir  string // With Big, directory for spill files
}

// Mapper adapts w to the engine. If w is a Combiner, each chunk's output is
// grouped by key (first-seen order) and passed through Combine before it is
// emitted.
func Mapper(w Worker) skyreduce.Mapper[[]string, string, string] {
	c, ok := w.(Combiner)
	if !ok {
		return w.Map
	}

	return func(ctx context.Context, chunk []string, emit Emitter) error {
		var keys []string
		local := make(map[string][]string)

		err := w.Map(ctx, chunk, func(key, value string) {
			if _, seen := local[key]; !seen {
				keys = append(keys, key)
			}
			local[key] = append(local[key], value)
		})
		if err != nil {
			return err
		}

		for _, key := range keys {
			if err := c.Combine(key, local[key], emit); err != nil {
				return fmt.Errorf("%w: key %q: %w", ErrCombine, key, err)
			}
		}

		return nil
	}
}

// Reducer adapts w to the engine, collecting everything Reduce emits.
func Reducer(w Worker) skyreduce.Reducer[string, string, []KeyValue] {
	return func(ctx context.Context, key string, values []string) ([]KeyValue, error) {
		var out []KeyValue

		err := w.Reduce(ctx, key, values, func(k, v string) {
			out = append(out, KeyValue{Key: k, Value: v})
		})

		return out, err
	}
}

// Run executes w over chunks on p and yields its output pairs in reduce
// completion order.
func Run(ctx context.Context, p *skyreduce.Pool, chunks skyreduce.Input[[]string], w Worker, cfg RunConfig, opts ...skyreduce.Option) iter.Seq2[KeyValue, error] {
	var results iter.Seq2[[]KeyValue, error]

	if cfg.Big {
		results = skyreduce.MapReduceBig(ctx, p, chunks, Mapper(w), Reducer(w), skyreduce.SpillConfig[string, string]{
			Dir:       cfg.SpillDir,
			Codec:     spill.StringCodec{},
			KeyCodec:  spill.StringCodec{},
			DiskIndex: cfg.DiskIndex,
		}, opts...)
	} else {
		results = skyreduce.MapReduce(ctx, p, chunks, Mapper(w), Reducer(w), opts...)
	}

	return func(yield func(KeyValue, error) bool) {
		for kvs, err := range results {
			if err != nil {
				yield(KeyValue{}, err)
				return
			}

			for _, kv := range kvs {
				if !yield(kv, nil) {
					return
				}
			}
		}
	}
}
