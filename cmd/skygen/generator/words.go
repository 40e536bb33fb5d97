package generator

import (
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
)

// WordsGenerator writes observing-log style sentences for word counting.
type WordsGenerator struct {
	Vocabulary int
	rand       *rand.Rand
	linePool   [][]byte
}

var words = []string{
	"exposure", "target", "galaxy", "star", "cluster", "nebula", "quasar",
	"seeing", "cloud", "filter", "dome", "flat", "bias", "dark", "focus",
}

const linePoolSize = 10000

func (g *WordsGenerator) Init(r *rand.Rand) {
	g.rand = r

	vocab := words
	if g.Vocabulary > len(words) {
		vocab = append([]string(nil), words...)
		for i := len(words); i < g.Vocabulary; i++ {
			vocab = append(vocab, "object_"+strconv.Itoa(i))
		}
	} else if g.Vocabulary > 0 {
		vocab = words[:g.Vocabulary]
	}

	g.linePool = make([][]byte, linePoolSize)
	for i := range g.linePool {
		n := 3 + r.IntN(6)
		line := make([]string, n)
		for j := range line {
			line[j] = vocab[r.IntN(len(vocab))]
		}
		g.linePool[i] = []byte(strings.Join(line, " ") + "\n")
	}
}

func (g *WordsGenerator) WriteLine(w io.Writer) error {
	_, err := w.Write(g.linePool[g.rand.IntN(linePoolSize)])
	return err
}

func (g *WordsGenerator) Description() string {
	return "Free text, one sentence per line (for wordcount)"
}

func (g *WordsGenerator) DefaultCount() int64 {
	return 1e4
}
