package generator

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
)

// CatalogGenerator writes "id,ra,dec,mag" rows. Half of the sources are
// spread uniformly over the sphere, the rest are drawn around a few cluster
// centres so that some cells are much denser than others.
type CatalogGenerator struct {
	Clusters int
	rand     *rand.Rand
	centres  [][2]float64
	next     int64
}

func (g *CatalogGenerator) Init(r *rand.Rand) {
	g.rand = r

	n := g.Clusters
	if n <= 0 {
		n = 8
	}

	g.centres = make([][2]float64, n)
	for i := range g.centres {
		g.centres[i] = g.uniform()
	}
}

// uniform returns a position uniformly distributed over the sphere.
func (g *CatalogGenerator) uniform() [2]float64 {
	ra := g.rand.Float64() * 360
	dec := math.Asin(2*g.rand.Float64()-1) * 180 / math.Pi
	return [2]float64{ra, dec}
}

func (g *CatalogGenerator) WriteLine(w io.Writer) error {
	pos := g.uniform()

	if g.rand.IntN(2) == 0 {
		c := g.centres[g.rand.IntN(len(g.centres))]
		pos[0] = math.Mod(c[0]+g.rand.NormFloat64()*0.5+360, 360)
		pos[1] = max(-90, min(90, c[1]+g.rand.NormFloat64()*0.5))
	}

	// Faint sources outnumber bright ones
	mag := 10 + 12*math.Sqrt(g.rand.Float64())

	g.next++
	_, err := fmt.Fprintf(w, "src%d,%.6f,%.6f,%.3f\n", g.next, pos[0], pos[1], mag)
	return err
}

func (g *CatalogGenerator) Description() string {
	return "Source catalog: id,ra,dec,mag (for skycell)"
}

func (g *CatalogGenerator) DefaultCount() int64 {
	return 1e5
}
