package executors

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestChunker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		fileContent    string
		chunkSize      int
		wantChunks     int
		wantTotalLines int
	}{
		{
			name:           "empty file",
			fileContent:    "",
			chunkSize:      10,
			wantChunks:     0,
			wantTotalLines: 0,
		},
		{
			name:           "single line",
			fileContent:    "hello world",
			chunkSize:      10,
			wantChunks:     1,
			wantTotalLines: 1,
		},
		{
			name:           "multiple small lines",
			fileContent:    "line1\nline2\nline3\n",
			chunkSize:      10,
			wantChunks:     1,
			wantTotalLines: 3,
		},
		{
			name:           "exact multiple of chunk size",
			fileContent:    "a\nb\nc\nd\n",
			chunkSize:      2,
			wantChunks:     2,
			wantTotalLines: 4,
		},
		{
			name:           "short last chunk",
			fileContent:    "a\nb\nc\nd\ne",
			chunkSize:      2,
			wantChunks:     3,
			wantTotalLines: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewChunker(strings.NewReader(tt.fileContent), tt.chunkSize)
			if err != nil {
				t.Fatalf("NewChunker() returned error: %v", err)
			}

			var chunks [][]string
			for chunk := range c.All() {
				chunks = append(chunks, chunk)
			}

			if err := c.Err(); err != nil {
				t.Fatalf("Chunker returned error: %v", err)
			}

			if len(chunks) != tt.wantChunks {
				t.Errorf("Got %d chunks, want %d", len(chunks), tt.wantChunks)
			}

			totalLines := 0
			for i, chunk := range chunks {
				totalLines += len(chunk)
				if len(chunk) == 0 || len(chunk) > tt.chunkSize {
					t.Errorf("Chunk %d has %d lines", i, len(chunk))
				}
			}

			if totalLines != tt.wantTotalLines {
				t.Errorf("Got %d total lines, want %d", totalLines, tt.wantTotalLines)
			}

			if c.Lines() != int64(tt.wantTotalLines) {
				t.Errorf("Lines() = %d, want %d", c.Lines(), tt.wantTotalLines)
			}
		})
	}
}

func TestChunker_InvalidSize(t *testing.T) {
	t.Parallel()

	if _, err := NewChunker(strings.NewReader("x"), 0); !errors.Is(err, ErrInvalidChunkSize) {
		t.Errorf("Expected ErrInvalidChunkSize, got %v", err)
	}
}

func TestChunker_ReadError(t *testing.T) {
	t.Parallel()

	c, err := NewChunker(iotest.TimeoutReader(strings.NewReader("a\nb\n")), 1)
	if err != nil {
		t.Fatal(err)
	}

	n := 0
	for range c.All() {
		n++
	}

	if n != 2 {
		t.Errorf("Got %d chunks before the error, want 2", n)
	}

	if !errors.Is(c.Err(), iotest.ErrTimeout) {
		t.Errorf("Expected read error to be reported, got %v", c.Err())
	}
}

func TestChunker_EarlyBreak(t *testing.T) {
	t.Parallel()

	c, err := NewChunker(strings.NewReader("a\nb\nc\nd\n"), 1)
	if err != nil {
		t.Fatal(err)
	}

	for chunk := range c.All() {
		if chunk[0] != "a" {
			t.Errorf("Got first chunk %v", chunk)
		}
		break
	}

	if c.Lines() != 1 {
		t.Errorf("Lines() = %d after reading one chunk", c.Lines())
	}
}
