// Package spill holds map-phase values on disk for the big map-reduce variant.
//
// The coordinator appends every value to a single file and keeps only the
// offsets of each key's records in an Index. Once the map phase is over the
// store is sealed; reduce tasks then read their values back through
// independent file handles. Writes always finish before the first read, so
// no locking is involved.
package spill

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"pkg.jsn.cam/skyreduce/pkg/storage"
)

// Options configures a Store
type Options[K comparable, V any] struct {
	Dir       string      // Directory for the spill file (default: os.TempDir())
	Codec     Codec[V]    // Value codec (required)
	KeyCodec  Codec[K]    // Key codec (required with DiskIndex)
	DiskIndex bool        // Keep the key -> offsets index in a bbolt file
	Logger    *log.Logger // Defaults to log.Default()
}

// Store is a single-run spill file plus its index.
type Store[K comparable, V any] struct {
	w       *Writer
	index   Index[K]
	codec   Codec[V]
	log     *log.Logger
	path    string
	files   []string
	buf     []byte
	records int
	sealed  bool
	closed  bool
}

// Create opens a new spill file (and bbolt index, if requested).
// Close must be called on every exit path; it removes both files.
func Create[K comparable, V any](opts Options[K, V]) (*Store[K, V], error) {
	if opts.Codec == nil {
		return nil, errors.New("spill: value codec is required")
	}

	if opts.DiskIndex && opts.KeyCodec == nil {
		return nil, errors.New("spill: key codec is required for a disk index")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	w, err := CreateFile(opts.Dir)
	if err != nil {
		return nil, err
	}

	s := &Store[K, V]{
		w:     w,
		codec: opts.Codec,
		log:   logger,
		path:  w.Path(),
		files: []string{w.Path()},
	}

	if !opts.DiskIndex {
		s.index = NewMemoryIndex[K]()
		return s, nil
	}

	dbPath := strings.TrimSuffix(w.Path(), ".spill") + ".index.db"
	s.files = append(s.files, dbPath)

	backend, err := storage.NewBboltBackend(dbPath, true)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: open index: %w", ErrIO, err)
	}

	index, err := NewDiskIndex(backend, opts.KeyCodec)
	if err != nil {
		backend.Close()
		s.Close()
		return nil, err
	}

	s.index = index

	return s, nil
}

// Path returns the spill file path
func (s *Store[K, V]) Path() string {
	return s.path
}

// Size returns the spill file size in bytes
func (s *Store[K, V]) Size() int64 {
	return s.w.Size()
}

// Records returns the number of values written
func (s *Store[K, V]) Records() int {
	return s.records
}

// Keys returns the number of distinct keys written
func (s *Store[K, V]) Keys() (int, error) {
	return s.index.Len()
}

// Put appends value to the file and records its offset under key.
func (s *Store[K, V]) Put(key K, value V) error {
	if s.sealed {
		return ErrSealed
	}

	buf, err := s.codec.Append(s.buf[:0], value)
	if err != nil {
		return fmt.Errorf("%w: encode value: %w", ErrIO, err)
	}
	s.buf = buf

	off, err := s.w.Append(buf)
	if err != nil {
		return err
	}

	if err := s.index.Add(key, off); err != nil {
		return err
	}

	s.records++

	return nil
}

// Seal ends the write phase: buffered records reach the file and the writer
// is closed. Load is only allowed afterwards.
func (s *Store[K, V]) Seal() error {
	if s.sealed {
		return nil
	}

	s.sealed = true

	if err := s.w.Close(); err != nil {
		return err
	}

	keys, err := s.index.Len()
	if err != nil {
		return err
	}

	s.log.Printf("[SPILL] Sealed %s: %s records, %s keys, %s",
		filepath.Base(s.path), humanize.Comma(int64(s.records)),
		humanize.Comma(int64(keys)), humanize.Bytes(uint64(s.w.Size())))

	return nil
}

// Groups returns every key in first-seen order. Pass each group to Load to
// read its values.
func (s *Store[K, V]) Groups() ([]Group[K], error) {
	if !s.sealed {
		return nil, ErrNotSealed
	}

	return s.index.Groups()
}

// Load reads the values of g through a new, private file handle, in the
// order they were written. It is safe to call from many goroutines once the
// store is sealed.
func (s *Store[K, V]) Load(g Group[K]) ([]V, error) {
	if !s.sealed {
		return nil, ErrNotSealed
	}

	offsets, err := s.index.Offsets(g)
	if err != nil {
		return nil, err
	}

	r, err := OpenFile(s.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	values := make([]V, 0, len(offsets))

	for _, off := range offsets {
		payload, err := r.ReadAt(off)
		if err != nil {
			return nil, err
		}

		v, err := s.codec.Decode(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: decode value at %d: %w", ErrIO, off, err)
		}

		values = append(values, v)
	}

	return values, nil
}

// Close releases the index and removes the spill and index files.
func (s *Store[K, V]) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true

	var errs []error

	if !s.sealed {
		s.sealed = true
		errs = append(errs, s.w.Close())
	}

	if s.index != nil {
		errs = append(errs, s.index.Close())
	}

	for _, f := range s.files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: close store: %w", ErrIO, err)
	}

	return nil
}
