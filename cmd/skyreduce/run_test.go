package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkg.jsn.cam/skyreduce/pkg/executors"
)

func writeInput(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	return path
}

func TestExecute(t *testing.T) {
	t.Parallel()

	input := writeInput(t, "the cat", "the dog", "a cat")
	want := "a\t1\ncat\t2\ndog\t1\nthe\t2\n"

	tests := []struct {
		name string
		cfg  runConfig
	}{
		{name: "in memory", cfg: runConfig{Workers: 2}},
		{name: "debug", cfg: runConfig{Debug: true}},
		{name: "streamed", cfg: runConfig{Workers: 2, Stream: true}},
		{name: "spilled", cfg: runConfig{Workers: 2, Big: true}},
		{name: "spilled with disk index", cfg: runConfig{Workers: 2, Big: true, DiskIndex: true}},
		{name: "bar progress", cfg: runConfig{Workers: 2, Progress: "bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.cfg
			cfg.Path = input
			cfg.Executor = "wordcount"
			cfg.ChunkSize = 1
			if cfg.Big {
				cfg.SpillDir = t.TempDir()
			}
			if cfg.Progress == "" {
				cfg.Progress = "none"
			}

			var out, errOut bytes.Buffer
			require.NoError(t, execute(context.Background(), cfg, &out, &errOut))
			assert.Equal(t, want, out.String())
			assert.Contains(t, errOut.String(), "3 lines -> 4 keys")

			if cfg.Big {
				entries, err := os.ReadDir(cfg.SpillDir)
				require.NoError(t, err)
				assert.Empty(t, entries)
			}
		})
	}
}

func TestExecute_EmptyKey(t *testing.T) {
	t.Parallel()

	input := writeInput(t, ":5", "a:3", ":7")

	for _, executor := range []string{"maxvalue", "average"} {
		for _, cfg := range []runConfig{
			{Workers: 2},
			{Workers: 2, Big: true},
			{Workers: 2, Big: true, DiskIndex: true},
		} {
			cfg.Path = input
			cfg.Executor = executor
			cfg.ChunkSize = 2
			cfg.Progress = "none"
			cfg.SpillDir = t.TempDir()

			var out, errOut bytes.Buffer
			require.NoError(t, execute(context.Background(), cfg, &out, &errOut), "%s big=%v diskIndex=%v", executor, cfg.Big, cfg.DiskIndex)

			want := map[string]string{
				"maxvalue": "\t7\na\t3\n",
				"average":  "\t6.00\na\t3.00\n",
			}[executor]
			assert.Equal(t, want, out.String(), "%s big=%v diskIndex=%v", executor, cfg.Big, cfg.DiskIndex)
		}
	}
}

func TestExecute_DefaultProgress(t *testing.T) {
	t.Parallel()

	input := writeInput(t, "m31,10.68,41.27,3.4", "m33,23.46,30.66,5.7")

	var out, errOut bytes.Buffer
	cfg := runConfig{Path: input, Executor: "skycell", ChunkSize: 1, Workers: 1, Progress: "default"}
	require.NoError(t, execute(context.Background(), cfg, &out, &errOut))

	assert.Equal(t, "10:131\tn=1 mag=3.40\n23:120\tn=1 mag=5.70\n", out.String())
	assert.Contains(t, errOut.String(), "[m/r (2 elem): ")
}

func TestExecute_Errors(t *testing.T) {
	t.Parallel()

	input := writeInput(t, "x")

	tests := []struct {
		name    string
		cfg     runConfig
		wantErr error
	}{
		{name: "unknown executor", cfg: runConfig{Path: input, Executor: "nope", ChunkSize: 1}, wantErr: executors.ErrUnknownExecutor},
		{name: "bad chunk size", cfg: runConfig{Path: input, Executor: "wordcount"}, wantErr: executors.ErrInvalidChunkSize},
		{name: "missing file", cfg: runConfig{Path: filepath.Join(t.TempDir(), "missing"), Executor: "wordcount", ChunkSize: 1}, wantErr: os.ErrNotExist},
		{name: "unknown progress", cfg: runConfig{Path: input, Executor: "wordcount", ChunkSize: 1, Progress: "fancy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out, errOut bytes.Buffer
			err := execute(context.Background(), tt.cfg, &out, &errOut)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
