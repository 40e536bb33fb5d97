package spill

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"pkg.jsn.cam/skyreduce/pkg/storage"
)

// Group is the spill-index entry of one key: where its values live.
//
// MemoryIndex fills in Offsets. DiskIndex leaves them on disk until
// Index.Offsets is called for the group.
type Group[K comparable] struct {
	Key     K
	Offsets []int64

	seq uint64
}

// Index maps keys to the offsets of their records. Groups returns keys in
// first-seen order; Offsets resolves one group's offsets in write order.
type Index[K comparable] interface {
	Add(key K, offset int64) error
	Groups() ([]Group[K], error)
	Offsets(g Group[K]) ([]int64, error)
	Len() (int, error)
	Close() error
}

// MemoryIndex keeps the whole index in memory.
type MemoryIndex[K comparable] struct {
	pos    map[K]int
	groups []Group[K]
}

func NewMemoryIndex[K comparable]() *MemoryIndex[K] {
	return &MemoryIndex[K]{pos: make(map[K]int)}
}

func (m *MemoryIndex[K]) Add(key K, offset int64) error {
	i, ok := m.pos[key]
	if !ok {
		i = len(m.groups)
		m.pos[key] = i
		m.groups = append(m.groups, Group[K]{Key: key})
	}

	m.groups[i].Offsets = append(m.groups[i].Offsets, offset)

	return nil
}

func (m *MemoryIndex[K]) Groups() ([]Group[K], error) {
	return m.groups, nil
}

func (m *MemoryIndex[K]) Offsets(g Group[K]) ([]int64, error) {
	return g.Offsets, nil
}

func (m *MemoryIndex[K]) Len() (int, error) {
	return len(m.groups), nil
}

func (m *MemoryIndex[K]) Close() error {
	return nil
}

var (
	lookupBucket  = []byte("lookup")  // lookup key -> sequence
	orderBucket   = []byte("order")   // sequence -> encoded key
	offsetsBucket = []byte("offsets") // sequence + flush number -> big-endian uint64 offsets
)

// Lookup keys are the encoded key behind a 0x00 byte, or its SHA-256 behind
// 0x01 when the encoding would not fit in a bucket key.
const (
	plainKey  byte = 0x00
	hashedKey byte = 0x01
)

// flushEvery bounds how many offsets DiskIndex buffers before writing them.
const flushEvery = 4096

// DiskIndex keeps the index in a storage.Backend, buffering a bounded number
// of offsets in memory between flushes. Keys are numbered in first-seen
// order; each flush writes one new chunk of offsets per key it touched, so
// existing chunks are never rewritten.
type DiskIndex[K comparable] struct {
	backend storage.Backend
	codec   Codec[K]

	pending  map[string][]int64
	newKeys  []string // pending keys in first-seen order
	buffered int
	keys     uint64
	flushes  uint64
}

// NewDiskIndex creates the index buckets in backend. Keys are stored in their
// codec encoding, so K must round-trip through codec.
func NewDiskIndex[K comparable](backend storage.Backend, codec Codec[K]) (*DiskIndex[K], error) {
	err := backend.Update(func(tx storage.Transaction) error {
		for _, name := range [][]byte{lookupBucket, orderBucket, offsetsBucket} {
			if err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create index buckets: %w", ErrIO, err)
	}

	return &DiskIndex[K]{
		backend: backend,
		codec:   codec,
		pending: make(map[string][]int64),
	}, nil
}

func (d *DiskIndex[K]) Add(key K, offset int64) error {
	enc, err := d.codec.Append(nil, key)
	if err != nil {
		return fmt.Errorf("%w: encode index key: %w", ErrIO, err)
	}

	k := string(enc)
	if _, ok := d.pending[k]; !ok {
		d.newKeys = append(d.newKeys, k)
	}

	d.pending[k] = append(d.pending[k], offset)
	d.buffered++

	if d.buffered >= flushEvery {
		return d.flush()
	}

	return nil
}

// flush writes the buffered offsets as one chunk per key in one transaction.
func (d *DiskIndex[K]) flush() error {
	if d.buffered == 0 {
		return nil
	}

	added := uint64(0)

	err := d.backend.Update(func(tx storage.Transaction) error {
		lookup := tx.Bucket(lookupBucket)
		order := tx.Bucket(orderBucket)
		offsets := tx.Bucket(offsetsBucket)

		for _, k := range d.newKeys {
			enc := []byte(k)
			lk := lookupKey(enc)

			var seq uint64
			if v := lookup.Get(lk); v != nil {
				seq = binary.BigEndian.Uint64(v)
				if lk[0] == hashedKey && !bytes.Equal(order.Get(v), enc) {
					return fmt.Errorf("%w: lookup hash collision for a %d byte key", ErrCorrupt, len(enc))
				}
			} else {
				seq = d.keys + added
				added++

				if err := lookup.Put(lk, seqKey(seq)); err != nil {
					return err
				}
				if err := order.Put(seqKey(seq), enc); err != nil {
					return err
				}
			}

			list := make([]byte, 0, 8*len(d.pending[k]))
			for _, off := range d.pending[k] {
				list = binary.BigEndian.AppendUint64(list, uint64(off))
			}

			chunk := binary.BigEndian.AppendUint64(seqKey(seq), d.flushes)
			if err := offsets.Put(chunk, list); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: flush index: %w", ErrIO, err)
	}

	d.keys += added
	d.flushes++
	clear(d.pending)
	d.newKeys = d.newKeys[:0]
	d.buffered = 0

	return nil
}

// Groups flushes pending offsets and returns every key in first-seen order.
// Offsets are not loaded: reduce tasks fetch them one group at a time.
func (d *DiskIndex[K]) Groups() ([]Group[K], error) {
	if err := d.flush(); err != nil {
		return nil, err
	}

	groups := make([]Group[K], 0, d.keys)

	err := d.backend.View(func(tx storage.Transaction) error {
		return tx.Bucket(orderBucket).ForEach(func(seq, enc []byte) error {
			key, err := d.codec.Decode(enc)
			if err != nil {
				return err
			}

			groups = append(groups, Group[K]{Key: key, seq: binary.BigEndian.Uint64(seq)})

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read index: %w", ErrIO, err)
	}

	return groups, nil
}

// Offsets reads the offset chunks of a group returned by Groups. It is safe
// to call from many goroutines once no more keys are being added.
func (d *DiskIndex[K]) Offsets(g Group[K]) ([]int64, error) {
	var offsets []int64

	err := d.backend.View(func(tx storage.Transaction) error {
		return tx.Bucket(offsetsBucket).ForEachPrefix(seqKey(g.seq), func(_, list []byte) error {
			if len(list)%8 != 0 {
				return fmt.Errorf("%w: bad offset list for key %v", ErrCorrupt, g.Key)
			}

			for ; len(list) > 0; list = list[8:] {
				offsets = append(offsets, int64(binary.BigEndian.Uint64(list)))
			}

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read offsets: %w", ErrIO, err)
	}

	return offsets, nil
}

// Len returns the number of distinct keys, flushing pending offsets first.
func (d *DiskIndex[K]) Len() (int, error) {
	if err := d.flush(); err != nil {
		return 0, err
	}

	return int(d.keys), nil
}

func (d *DiskIndex[K]) Close() error {
	return d.backend.Close()
}

func seqKey(seq uint64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 16), seq)
}

func lookupKey(enc []byte) []byte {
	if len(enc) < storage.MaxKeySize {
		return append([]byte{plainKey}, enc...)
	}

	sum := sha256.Sum256(enc)

	return append([]byte{hashedKey}, sum[:]...)
}
