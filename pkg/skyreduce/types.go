package skyreduce

import (
	"context"
	"iter"
	"slices"
)

// Stage names the phase a task or progress event belongs to.
type Stage string

const (
	StageMap       Stage = "map"
	StageReduce    Stage = "reduce"
	StageMapReduce Stage = "mapreduce"
)

// Step is the position of a progress event within its stage.
type Step string

const (
	StepBegin Step = "begin"
	StepStep  Step = "step"
	StepEnd   Step = "end"
)

// Task is one unit of work: a closure bound to a single input element.
type Task struct {
	Index int
	Stage Stage
	Run   func(ctx context.Context) (any, error)
}

// Result is what a worker pushes back for a Task.
type Result struct {
	Index int
	Value any
	Err   error
}

// Item is a typed, index-tagged element of a MapUnordered sequence.
type Item[T any] struct {
	Index int
	Value T
}

// KeyValue is a single pair emitted by a Mapper.
type KeyValue[K comparable, V any] struct {
	Key   K
	Value V
}

// Group holds every value emitted under one key, in map completion order.
type Group[K comparable, V any] struct {
	Key    K
	Values []V
}

// Emitter receives the pairs produced by a Mapper.
type Emitter[K comparable, V any] func(key K, value V)

// MapFunc transforms one input element into one value.
type MapFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

// Mapper transforms one input element into zero or more key/value pairs.
type Mapper[In any, K comparable, V any] func(ctx context.Context, in In, emit Emitter[K, V]) error

// Reducer aggregates all values collected under key into one result.
type Reducer[K comparable, V, R any] func(ctx context.Context, key K, values []V) (R, error)

// Size says whether the number of input elements is known up front.
type Size struct {
	n     int
	known bool
}

// Unsized is the Size of a stream whose length is not known in advance.
var Unsized = Size{}

// SizeOf returns a known Size of n elements.
func SizeOf(n int) Size {
	return Size{n: n, known: true}
}

// Len returns the element count and whether it is known.
func (s Size) Len() (int, bool) {
	return s.n, s.known
}

func (s Size) Known() bool {
	return s.known
}

// Input is an element sequence tagged with its Size.
type Input[T any] struct {
	seq  iter.Seq[T]
	size Size
}

// Slice wraps a slice as a sized input.
func Slice[T any](xs []T) Input[T] {
	return Input[T]{seq: slices.Values(xs), size: SizeOf(len(xs))}
}

// Sized wraps a sequence that the caller promises yields exactly n elements.
func Sized[T any](seq iter.Seq[T], n int) Input[T] {
	return Input[T]{seq: seq, size: SizeOf(n)}
}

// Stream wraps a sequence of unknown length.
func Stream[T any](seq iter.Seq[T]) Input[T] {
	return Input[T]{seq: seq, size: Unsized}
}

// Size returns the size tag fixed when the input was built.
func (in Input[T]) Size() Size {
	return in.size
}

// All returns the underlying sequence.
func (in Input[T]) All() iter.Seq[T] {
	if in.seq == nil {
		return func(func(T) bool) {}
	}

	return in.seq
}
