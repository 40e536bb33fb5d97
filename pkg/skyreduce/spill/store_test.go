package spill

import (
	"io"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestStore_Lifecycle(t *testing.T) {
	t.Parallel()

	for _, diskIndex := range []bool{false, true} {
		dir := t.TempDir()

		s, err := Create(Options[string, float64]{
			Dir:       dir,
			Codec:     Float64Codec{},
			KeyCodec:  StringCodec{},
			DiskIndex: diskIndex,
			Logger:    quietLogger(),
		})
		require.NoError(t, err)

		mags := map[string][]float64{
			"n17": {12.5, 13.1, 9.8},
			"":    {15.0},
		}
		require.NoError(t, s.Put("n17", 12.5))
		require.NoError(t, s.Put("", 15.0))
		require.NoError(t, s.Put("n17", 13.1))
		require.NoError(t, s.Put("n17", 9.8))

		assert.Equal(t, 4, s.Records())

		_, err = s.Groups()
		assert.ErrorIs(t, err, ErrNotSealed)
		_, err = s.Load(Group[string]{Key: "n17"})
		assert.ErrorIs(t, err, ErrNotSealed)

		require.NoError(t, s.Seal())
		require.NoError(t, s.Seal())
		assert.ErrorIs(t, s.Put("n17", 1), ErrSealed)
		keys, err := s.Keys()
		require.NoError(t, err)
		assert.Equal(t, 2, keys)

		groups, err := s.Groups()
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "n17", groups[0].Key)
		assert.Equal(t, "", groups[1].Key)

		for _, g := range groups {
			values, err := s.Load(g)
			require.NoError(t, err)
			assert.Equal(t, mags[g.Key], values)
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		if diskIndex {
			assert.Len(t, entries, 2)
		} else {
			assert.Len(t, entries, 1)
		}

		require.NoError(t, s.Close())
		require.NoError(t, s.Close())

		entries, err = os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}

func TestStore_CloseWithoutSeal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	s, err := Create(Options[int64, string]{Dir: dir, Codec: StringCodec{}, Logger: quietLogger()})
	require.NoError(t, err)
	require.NoError(t, s.Put(1, "partial"))

	require.NoError(t, s.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_ConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := Create(Options[string, int]{Dir: t.TempDir()})
	assert.Error(t, err)

	_, err = Create(Options[string, int]{Dir: t.TempDir(), Codec: IntCodec{}, DiskIndex: true})
	assert.Error(t, err)
}
