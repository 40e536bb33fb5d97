package generator

import (
	"io"
	"math/rand/v2"
)

// Generator produces input lines for one executor
type Generator interface {
	// Init seeds the generator with its own random source
	Init(r *rand.Rand)

	// WriteLine writes a single line of test data to the writer
	WriteLine(w io.Writer) error

	Description() string

	// DefaultCount returns the suggested default number of lines to generate
	DefaultCount() int64
}
