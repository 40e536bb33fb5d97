package executors

import (
	"bufio"
	"io"
	"iter"
)

// Chunker splits a line-oriented reader into chunks of at most size lines.
// Like bufio.Scanner, a read error ends the sequence and is reported by Err.
type Chunker struct {
	scanner *bufio.Scanner
	size    int
	lines   int64
	err     error
}

func NewChunker(r io.Reader, size int) (*Chunker, error) {
	if size <= 0 {
		return nil, ErrInvalidChunkSize
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &Chunker{scanner: scanner, size: size}, nil
}

// All yields the chunks. It can be ranged over once.
func (c *Chunker) All() iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		var chunk []string
		for c.scanner.Scan() {
			chunk = append(chunk, c.scanner.Text())
			c.lines++
			if len(chunk) >= c.size {
				if !yield(chunk) {
					return
				}
				chunk = nil
			}
		}

		c.err = c.scanner.Err()

		if len(chunk) > 0 {
			yield(chunk)
		}
	}
}

// Lines returns the number of lines read so far
func (c *Chunker) Lines() int64 {
	return c.lines
}

func (c *Chunker) Err() error {
	return c.err
}
