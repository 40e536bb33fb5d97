package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"pkg.jsn.cam/skyreduce/pkg/executors"
	"pkg.jsn.cam/skyreduce/pkg/skyreduce"
)

type runConfig struct {
	Path      string
	Executor  string
	ChunkSize int
	Workers   int
	Debug     bool
	Big       bool
	DiskIndex bool
	SpillDir  string
	Progress  string
	Stream    bool
}

func reporter(name string, w io.Writer) (skyreduce.Reporter, error) {
	switch name {
	case "", "default":
		return skyreduce.NewDefaultReporter(w), nil
	case "bar":
		return skyreduce.NewBarReporter(w), nil
	case "none":
		return skyreduce.Discard, nil
	default:
		return nil, fmt.Errorf("unknown progress display %q", name)
	}
}

// execute runs one job and writes its output, sorted by key, to out as
// tab-separated lines. Progress and the summary go to errOut.
func execute(ctx context.Context, cfg runConfig, out, errOut io.Writer) error {
	worker, err := executors.GetExecutor(cfg.Executor)
	if err != nil {
		return fmt.Errorf("%w: %s (available: %s)", err, cfg.Executor, strings.Join(executors.ListExecutors(), ", "))
	}

	rep, err := reporter(cfg.Progress, errOut)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return err
	}

	file, err := os.Open(absPath)
	if err != nil {
		return err
	}
	defer file.Close()

	chunker, err := executors.NewChunker(file, cfg.ChunkSize)
	if err != nil {
		return err
	}

	var input skyreduce.Input[[]string]
	if cfg.Stream {
		input = skyreduce.Stream(chunker.All())
	} else {
		input = skyreduce.Slice(slices.Collect(chunker.All()))
		if err := chunker.Err(); err != nil {
			return fmt.Errorf("read %s: %w", absPath, err)
		}
	}

	logger := log.New(errOut, "", log.LstdFlags)

	pool := skyreduce.NewPool(skyreduce.Config{Workers: cfg.Workers, Inline: cfg.Debug, Logger: logger})
	defer pool.Close()

	logger.Printf("[SKYREDUCE] Running %s on %s with %s", cfg.Executor, absPath, pool)

	start := time.Now()

	var results []executors.KeyValue
	runCfg := executors.RunConfig{Big: cfg.Big, DiskIndex: cfg.DiskIndex, SpillDir: cfg.SpillDir}

	for kv, err := range executors.Run(ctx, pool, input, worker, runCfg, skyreduce.WithProgress(rep)) {
		if err != nil {
			return err
		}
		results = append(results, kv)
	}

	if err := chunker.Err(); err != nil {
		return fmt.Errorf("read %s: %w", absPath, err)
	}

	slices.SortFunc(results, func(a, b executors.KeyValue) int {
		return strings.Compare(a.Key, b.Key)
	})

	bw := bufio.NewWriter(out)
	for _, kv := range results {
		fmt.Fprintf(bw, "%s\t%s\n", kv.Key, kv.Value)
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	logger.Printf("[SKYREDUCE] %s lines -> %s keys in %s",
		humanize.Comma(chunker.Lines()), humanize.Comma(int64(len(results))),
		time.Since(start).Round(time.Millisecond))

	return nil
}
