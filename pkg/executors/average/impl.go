package average

import (
	"context"
	"strconv"
	"strings"

	"pkg.jsn.cam/skyreduce/pkg/skyreduce"
)

// AverageWorker calculates the average numeric value per key.
// Input format: "key:value" per line (e.g., "temperature:72.5")
type AverageWorker struct{}

// Map extracts key-value pairs and emits (key, value)
func (w AverageWorker) Map(ctx context.Context, chunk []string, emit skyreduce.Emitter[string, string]) error {
	for _, line := range chunk {
		if err := ctx.Err(); err != nil {
			return err
		}

		key, value, ok := strings.Cut(line, ":")
		if ok {
			emit(key, value)
		}
	}
	return nil
}

// Combine folds raw values into a single "sum:count" value per key.
func (w AverageWorker) Combine(key string, values []string, emit skyreduce.Emitter[string, string]) error {
	sum, count := Accumulate(values)
	if count > 0 {
		emit(key, strconv.FormatFloat(sum, 'g', -1, 64)+":"+strconv.Itoa(count))
	}
	return nil
}

// Reduce computes the final average from "sum:count" values
func (w AverageWorker) Reduce(_ context.Context, key string, values []string, emit skyreduce.Emitter[string, string]) error {
	sum, count := Accumulate(values)
	if count > 0 {
		emit(key, strconv.FormatFloat(sum/float64(count), 'f', 2, 64))
	}
	return nil
}

func (w AverageWorker) Description() string {
	return "Calculates average numeric value per key (format: key:value)"
}

// Accumulate adds up values that are either raw numbers or "sum:count"
// partials. Unparseable values are skipped.
func Accumulate(values []string) (float64, int) {
	var sum float64
	var count int

	for _, v := range values {
		if s, c, ok := strings.Cut(v, ":"); ok {
			partial, err1 := strconv.ParseFloat(s, 64)
			n, err2 := strconv.Atoi(c)
			if err1 == nil && err2 == nil {
				sum += partial
				count += n
			}
			continue
		}

		val, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			sum += val
			count++
		}
	}

	return sum, count
}
