package wordcount

import (
	"context"
	"strconv"
	"strings"

	"pkg.jsn.cam/skyreduce/pkg/skyreduce"
)

// WordCountWorker counts occurrences of each whitespace-separated word.
type WordCountWorker struct{}

// Map splits each line into words and emits (word, "1") pairs.
func (w WordCountWorker) Map(ctx context.Context, chunk []string, emit skyreduce.Emitter[string, string]) error {
	for _, line := range chunk {
		if err := ctx.Err(); err != nil {
			return err
		}

		for _, word := range strings.Fields(line) {
			emit(word, "1")
		}
	}

	return nil
}

// Combine sums the counts of one chunk
func (w WordCountWorker) Combine(key string, values []string, emit skyreduce.Emitter[string, string]) error {
	total, err := sum(values)
	if err != nil {
		return err
	}

	emit(key, strconv.Itoa(total))
	return nil
}

// Reduce receives all counts for a word and emits (word, total)
func (w WordCountWorker) Reduce(_ context.Context, key string, values []string, emit skyreduce.Emitter[string, string]) error {
	return w.Combine(key, values, emit)
}

func (w WordCountWorker) Description() string {
	return "A simple word count worker that counts occurrences of each word"
}

func sum(values []string) (int, error) {
	total := 0
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
