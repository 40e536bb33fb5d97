package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pkg.jsn.cam/skyreduce/pkg/executors"
)

var (
	path      = flag.String("path", "", "Path to the input file (one record per line)")
	executor  = flag.String("executor", "skycell", "Executor to run (see -list)")
	chunkSize = flag.Int("chunk-size", 1000, "Lines per map task")
	workers   = flag.Int("workers", 0, "Worker goroutines (0 = number of CPUs)")
	debug     = flag.Bool("debug", false, "Run every task inline on the calling goroutine")
	big       = flag.Bool("big", false, "Spill map output to disk")
	diskIndex = flag.Bool("disk-index", false, "With -big, keep the spill index in bbolt")
	spillDir  = flag.String("spill-dir", "", "With -big, directory for spill files (default: system temp dir)")
	progress  = flag.String("progress", "default", "Progress display: default, bar or none")
	stream    = flag.Bool("stream", false, "Stream chunks instead of loading the file up front (no percentage progress)")
	list      = flag.Bool("list", false, "List executors and exit")
)

func main() {
	flag.Parse()

	if *list {
		for _, name := range executors.ListExecutors() {
			desc, _ := executors.GetDescription(name)
			fmt.Printf("%-12s %s\n", name, desc)
		}
		return
	}

	if *path == "" {
		log.Fatal("path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := runConfig{
		Path:      *path,
		Executor:  *executor,
		ChunkSize: *chunkSize,
		Workers:   *workers,
		Debug:     *debug,
		Big:       *big,
		DiskIndex: *diskIndex,
		SpillDir:  *spillDir,
		Progress:  *progress,
		Stream:    *stream,
	}

	if err := execute(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("[SKYREDUCE] %v", err)
	}
}
