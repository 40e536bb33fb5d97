package skyreduce

import (
	"context"
	"iter"

	"pkg.jsn.cam/skyreduce/pkg/skyreduce/spill"
)

// MapReduce runs mapper over input, groups the emitted values by key in
// memory, then runs reducer once per key. Every map result is drained before
// the first reduce task is submitted. Results are yielded in reduce completion
// order.
func MapReduce[In any, K comparable, V, R any](ctx context.Context, p *Pool, input Input[In], mapper Mapper[In, K, V], reducer Reducer[K, V, R], opts ...Option) iter.Seq2[R, error] {
	o := newOptions(StageMapReduce, opts)

	return func(yield func(R, error) bool) {
		var zero R

		if err := p.acquire(); err != nil {
			yield(zero, err)
			return
		}
		defer p.release()

		rep := o.reporter
		rep.Report(Event{Stage: StageMapReduce, Step: StepBegin, Size: input.Size(), Index: -1})

		groups := newGrouper[K, V]()

		for item, err := range phase(ctx, p, StageMap, input, emitPairs(mapper), rep) {
			if err != nil {
				yield(zero, err)
				return
			}

			for _, kv := range item.Value {
				groups.add(kv.Key, kv.Value)
			}
		}

		reduce := func(ctx context.Context, g Group[K, V]) (R, error) {
			return reducer(ctx, g.Key, g.Values)
		}

		for item, err := range phase(ctx, p, StageReduce, Slice(groups.list), reduce, rep) {
			if err != nil {
				yield(zero, err)
				return
			}

			if !yield(item.Value, nil) {
				return
			}
		}

		rep.Report(Event{Stage: StageMapReduce, Step: StepEnd, Size: input.Size(), Index: -1})
	}
}

// SpillConfig configures where and how MapReduceBig spills map output.
//
// With DiskIndex only the distinct keys are held in memory at the reduce
// barrier; each reduce task reads its own key's offsets from the index.
type SpillConfig[K comparable, V any] struct {
	Dir       string         // Spill directory (default: os.TempDir())
	Codec     spill.Codec[V] // Value codec (required)
	KeyCodec  spill.Codec[K] // Key codec (required with DiskIndex)
	DiskIndex bool           // Keep the key -> offsets index in bbolt instead of memory
}

// MapReduceBig has the contract of MapReduce, but map output values are
// written to a spill file as they are drained and only their offsets stay in
// memory. Each reduce task reads its key's values back before calling
// reducer. The spill file is removed however the run ends.
func MapReduceBig[In any, K comparable, V, R any](ctx context.Context, p *Pool, input Input[In], mapper Mapper[In, K, V], reducer Reducer[K, V, R], cfg SpillConfig[K, V], opts ...Option) iter.Seq2[R, error] {
	o := newOptions(StageMapReduce, opts)

	return func(yield func(R, error) bool) {
		var zero R

		if err := p.acquire(); err != nil {
			yield(zero, err)
			return
		}
		defer p.release()

		store, err := spill.Create(spill.Options[K, V]{
			Dir:       cfg.Dir,
			Codec:     cfg.Codec,
			KeyCodec:  cfg.KeyCodec,
			DiskIndex: cfg.DiskIndex,
			Logger:    p.log,
		})
		if err != nil {
			yield(zero, err)
			return
		}
		defer func() {
			if err := store.Close(); err != nil {
				p.log.Printf("[SPILL] Cleanup of %s failed: %v", store.Path(), err)
			}
		}()

		rep := o.reporter
		rep.Report(Event{Stage: StageMapReduce, Step: StepBegin, Size: input.Size(), Index: -1})

		for item, err := range phase(ctx, p, StageMap, input, emitPairs(mapper), rep) {
			if err != nil {
				yield(zero, err)
				return
			}

			for _, kv := range item.Value {
				if err := store.Put(kv.Key, kv.Value); err != nil {
					p.fail(err)
					yield(zero, err)
					return
				}
			}
		}

		if err := store.Seal(); err != nil {
			yield(zero, err)
			return
		}

		groups, err := store.Groups()
		if err != nil {
			yield(zero, err)
			return
		}

		reduce := func(ctx context.Context, g spill.Group[K]) (R, error) {
			values, err := store.Load(g)
			if err != nil {
				return zero, err
			}

			return reducer(ctx, g.Key, values)
		}

		for item, err := range phase(ctx, p, StageReduce, Slice(groups), reduce, rep) {
			if err != nil {
				yield(zero, err)
				return
			}

			if !yield(item.Value, nil) {
				return
			}
		}

		rep.Report(Event{Stage: StageMapReduce, Step: StepEnd, Size: input.Size(), Index: -1})
	}
}

// emitPairs adapts a Mapper to a MapFunc returning everything it emitted.
func emitPairs[In any, K comparable, V any](mapper Mapper[In, K, V]) MapFunc[In, []KeyValue[K, V]] {
	return func(ctx context.Context, in In) ([]KeyValue[K, V], error) {
		var pairs []KeyValue[K, V]

		err := mapper(ctx, in, func(key K, value V) {
			pairs = append(pairs, KeyValue[K, V]{Key: key, Value: value})
		})

		return pairs, err
	}
}

// grouper builds Key-Groups on the coordinator, keeping first-seen key order.
type grouper[K comparable, V any] struct {
	pos  map[K]int
	list []Group[K, V]
}

func newGrouper[K comparable, V any]() *grouper[K, V] {
	return &grouper[K, V]{pos: make(map[K]int)}
}

func (g *grouper[K, V]) add(key K, value V) {
	i, ok := g.pos[key]
	if !ok {
		i = len(g.list)
		g.pos[key] = i
		g.list = append(g.list, Group[K, V]{Key: key})
	}

	g.list[i].Values = append(g.list[i].Values, value)
}
