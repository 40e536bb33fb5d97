package generator

import (
	"fmt"
	"io"
	"math/rand/v2"
)

// MetricGenerator writes key:value observing conditions
type MetricGenerator struct {
	KeyCount int
	rand     *rand.Rand
	keys     []string
}

var metricKeys = []string{
	"seeing",
	"airmass",
	"sky_brightness",
	"humidity",
	"dome_temperature",
	"wind_speed",
	"extinction",
	"exposure_time",
	"readout_noise",
	"focus_offset",
}

func (g *MetricGenerator) Init(r *rand.Rand) {
	g.rand = r
	g.keys = metricKeys
	if g.KeyCount > 0 && g.KeyCount < len(metricKeys) {
		g.keys = metricKeys[:g.KeyCount]
	}
}

func (g *MetricGenerator) WriteLine(w io.Writer) error {
	key := g.keys[g.rand.IntN(len(g.keys))]
	value := g.rand.Float64() * 100
	_, err := fmt.Fprintf(w, "%s:%.2f\n", key, value)
	return err
}

func (g *MetricGenerator) Description() string {
	return "Metric data: key:value (for maxvalue/average)"
}

func (g *MetricGenerator) DefaultCount() int64 {
	return 1e5
}
