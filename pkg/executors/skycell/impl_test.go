package skycell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    Row
		wantErr bool
	}{
		{name: "valid", line: "m31, 10.6847, 41.2690, 3.44", want: Row{ID: "m31", RA: 10.6847, Dec: 41.2690, Mag: 3.44}},
		{name: "south pole", line: "sp,359.9,-90,12", want: Row{ID: "sp", RA: 359.9, Dec: -90, Mag: 12}},
		{name: "too few fields", line: "m31,10.6,41.2", wantErr: true},
		{name: "bad number", line: "m31,ten,41.2,3", wantErr: true},
		{name: "ra wraps", line: "x,360,0,1", wantErr: true},
		{name: "dec beyond pole", line: "x,10,90.5,1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRow(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCell(t *testing.T) {
	t.Parallel()

	w := CellCountWorker{CellDeg: 10}

	assert.Equal(t, "0:0", w.Cell(0, -90))
	assert.Equal(t, "1:13", w.Cell(10.68, 41.27))
	assert.Equal(t, "35:17", w.Cell(359.99, 90))

	// Zero value falls back to one-degree cells
	assert.Equal(t, "10:131", CellCountWorker{}.Cell(10.68, 41.27))
}

func TestMapAndReduce(t *testing.T) {
	t.Parallel()

	w := CellCountWorker{CellDeg: DefaultCellDeg}

	emitted := map[string][]string{}
	err := w.Map(context.Background(), []string{
		"# header",
		"a,10.2,41.5,10",
		"b,10.9,41.1,12",
		"c,200,0,8",
		"nope",
	}, func(k, v string) { emitted[k] = append(emitted[k], v) })
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"10:131": {"10", "12"},
		"200:90": {"8"},
	}, emitted)

	var out []string
	err = w.Reduce(context.Background(), "10:131", emitted["10:131"], func(k, v string) { out = append(out, k+" "+v) })
	require.NoError(t, err)
	assert.Equal(t, []string{"10:131 n=2 mag=11.00"}, out)
}

func TestMap_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := CellCountWorker{}.Map(ctx, []string{"a,1,1,1"}, func(string, string) {})
	assert.ErrorIs(t, err, context.Canceled)
}
