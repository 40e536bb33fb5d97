package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"pkg.jsn.cam/skyreduce/cmd/skygen/generator"
)

// Generates input files for the skyreduce executors.

var (
	kind       = flag.String("kind", "skycell", "Generator to use (see -list)")
	count      = flag.Int64("count", 0, "Number of lines (0 = generator default)")
	keys       = flag.Int("keys", 0, "Size of the key space (0 = generator default)")
	seed       = flag.Uint64("seed", 1, "Random seed")
	outputPath = flag.String("output", "var/testdata.txt", "Output file path")
	list       = flag.Bool("list", false, "List generators and exit")
)

func main() {
	flag.Parse()

	if *list {
		for _, name := range generator.List() {
			g, _ := generator.Get(name, 0)
			fmt.Printf("%-12s %s\n", name, g.Description())
		}
		return
	}

	g, err := generator.Get(*kind, *keys)
	if err != nil {
		log.Fatal(err)
	}

	g.Init(rand.New(rand.NewPCG(*seed, *seed^0x5ca1ab1e)))

	n := *count
	if n <= 0 {
		n = g.DefaultCount()
	}

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0755); err != nil {
		log.Fatal(err)
	}

	file, err := os.Create(*outputPath)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for range n {
		if err := g.WriteLine(w); err != nil {
			log.Fatal(err)
		}
	}

	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}

	info, err := file.Stat()
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("Wrote %s %s lines to %s (%s)", humanize.Comma(n), *kind, *outputPath, humanize.Bytes(uint64(info.Size())))
}
