package skyreduce

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
)

// MapUnordered applies fn to every element of input on the pool and yields
// the results in completion order, each tagged with the zero-based index of
// its element. An error is yielded once, as the last pair of the sequence.
//
// The sequence is one-pass. Breaking out of it early discards the results the
// pool still owes, so the pool can be reused for the next phase.
func MapUnordered[In, Out any](ctx context.Context, p *Pool, input Input[In], fn MapFunc[In, Out], opts ...Option) iter.Seq2[Item[Out], error] {
	o := newOptions(StageMap, opts)

	return func(yield func(Item[Out], error) bool) {
		if err := p.acquire(); err != nil {
			yield(Item[Out]{}, err)
			return
		}
		defer p.release()

		for item, err := range phase(ctx, p, o.stage, input, fn, o.reporter) {
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

// phase runs one begin/step.../end cycle. The caller must hold the pool.
func phase[In, Out any](ctx context.Context, p *Pool, stage Stage, input Input[In], fn MapFunc[In, Out], rep Reporter) iter.Seq2[Item[Out], error] {
	return func(yield func(Item[Out], error) bool) {
		size := input.Size()
		rep.Report(Event{Stage: stage, Step: StepBegin, Size: size, Index: -1})

		n := 0
		for in := range input.All() {
			task := Task{
				Index: n,
				Stage: stage,
				Run: func(ctx context.Context) (any, error) {
					v, err := fn(ctx, in)
					return v, err
				},
			}

			if err := p.Submit(task); err != nil {
				p.discard(ctx, n)
				yield(Item[Out]{}, err)
				return
			}

			n++
		}

		if want, ok := size.Len(); ok && want != n {
			err := fmt.Errorf("%w: %s input declared %d elements but yielded %d", ErrInvalidInput, stage, want, n)
			p.fail(err)
			yield(Item[Out]{}, err)
			return
		}

		drained := 0
		defer func() {
			if drained < n {
				p.discard(ctx, n-drained)
			}
		}()

		for drained < n {
			res, err := p.Next(ctx)
			if err != nil {
				drained = n // the pool is poisoned, nothing left to account for
				yield(Item[Out]{}, err)
				return
			}

			drained++

			out, _ := res.Value.(Out)
			rep.Report(Event{Stage: stage, Step: StepStep, Size: size, Index: res.Index, Result: out})

			if !yield(Item[Out]{Index: res.Index, Value: out}, nil) {
				return
			}
		}

		rep.Report(Event{Stage: stage, Step: StepEnd, Size: size, Index: -1})
	}
}

// Ordered collects seq and returns its values sorted back into input order.
func Ordered[T any](seq iter.Seq2[Item[T], error]) ([]T, error) {
	items, err := Collect(seq)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(items, func(a, b Item[T]) int {
		return cmp.Compare(a.Index, b.Index)
	})

	out := make([]T, len(items))
	for i, item := range items {
		out[i] = item.Value
	}

	return out, nil
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T

	for v, err := range seq {
		if err != nil {
			return out, err
		}

		out = append(out, v)
	}

	return out, nil
}
