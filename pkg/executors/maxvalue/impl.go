package maxvalue

import (
	"context"
	"strconv"
	"strings"

	"pkg.jsn.cam/skyreduce/pkg/skyreduce"
)

// MaxValueWorker finds the maximum numeric value for each key.
// Input format: "key:value" per line (e.g., "temperature:72.5")
type MaxValueWorker struct{}

// Map extracts key-value pairs and emits them
func (w MaxValueWorker) Map(ctx context.Context, chunk []string, emit skyreduce.Emitter[string, string]) error {
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

// Combine finds the local maximum for each key
func (w MaxValueWorker) Combine(key string, values []string, emit skyreduce.Emitter[string, string]) error {
	if len(values) == 0 {
		return nil
	}

	maxVal := parseFloat(values[0])
	for _, v := range values[1:] {
		if val := parseFloat(v); val > maxVal {
			maxVal = val
		}
	}

	emit(key, strconv.FormatFloat(maxVal, 'f', -1, 64))
	return nil
}

// Reduce finds the global maximum for each key across all combined results
func (w MaxValueWorker) Reduce(_ context.Context, key string, values []string, emit skyreduce.Emitter[string, string]) error {
	return w.Combine(key, values, emit)
}

func (w MaxValueWorker) Description() string {
	return "Finds the maximum numeric value for each key (format: key:value)"
}

func parseFloat(s string) float64 {
	val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return val
}
