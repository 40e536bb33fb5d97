// Package skycell counts catalog sources per equal-angle sky cell.
package skycell

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"pkg.jsn.cam/skyreduce/pkg/executors/average"
	"pkg.jsn.cam/skyreduce/pkg/skyreduce"
)

const DefaultCellDeg = 1.0

// CellCountWorker bins catalog rows into CellDeg × CellDeg cells of
// (ra, dec) and reports the number of sources and their mean magnitude per
// cell.
//
// Input format: "id,ra,dec,mag" per line, angles in degrees. Blank lines,
// lines starting with '#' and rows outside the sky are skipped.
// Output: ("<ra index>:<dec index>", "n=<count> mag=<mean>")
type CellCountWorker struct {
	CellDeg float64
}

// Row is one parsed catalog line
type Row struct {
	ID  string
	RA  float64
	Dec float64
	Mag float64
}

// ParseRow parses an "id,ra,dec,mag" line.
func ParseRow(line string) (Row, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 4 {
		return Row{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}

	var nums [3]float64
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Row{}, fmt.Errorf("field %d: %w", i+2, err)
		}
		nums[i] = v
	}

	row := Row{ID: strings.TrimSpace(fields[0]), RA: nums[0], Dec: nums[1], Mag: nums[2]}
	if row.RA < 0 || row.RA >= 360 || row.Dec < -90 || row.Dec > 90 {
		return Row{}, fmt.Errorf("position (%g, %g) outside the sky", row.RA, row.Dec)
	}

	return row, nil
}

// Cell returns the cell key of a position.
func (w CellCountWorker) Cell(ra, dec float64) string {
	size := w.CellDeg
	if size <= 0 {
		size = DefaultCellDeg
	}

	i := int(math.Floor(ra / size))
	// dec = +90 belongs to the last row
	j := min(int(math.Floor((dec+90)/size)), int(math.Ceil(180/size))-1)

	return strconv.Itoa(i) + ":" + strconv.Itoa(j)
}

// Map emits (cell, magnitude) for each valid row
func (w CellCountWorker) Map(ctx context.Context, chunk []string, emit skyreduce.Emitter[string, string]) error {
	for _, line := range chunk {
		if err := ctx.Err(); err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		row, err := ParseRow(line)
		if err != nil {
			continue
		}

		emit(w.Cell(row.RA, row.Dec), strconv.FormatFloat(row.Mag, 'f', -1, 64))
	}

	return nil
}

// Combine folds the magnitudes of one chunk into "sum:count".
func (w CellCountWorker) Combine(key string, values []string, emit skyreduce.Emitter[string, string]) error {
	return average.AverageWorker{}.Combine(key, values, emit)
}

func (w CellCountWorker) Reduce(_ context.Context, key string, values []string, emit skyreduce.Emitter[string, string]) error {
	sum, count := average.Accumulate(values)
	if count > 0 {
		emit(key, fmt.Sprintf("n=%d mag=%.2f", count, sum/float64(count)))
	}
	return nil
}

func (w CellCountWorker) Description() string {
	return "Counts catalog sources and their mean magnitude per sky cell (format: id,ra,dec,mag)"
}
