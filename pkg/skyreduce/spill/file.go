package spill

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"
)

// File layout:
//
//	header: "SKYSPILL" | uvarint(len(version)) | version
//	record: uvarint(len(payload)) | payload
//
// Offsets handed out by Writer.Append point at the first byte of a record.
const (
	magic         = "SKYSPILL"
	FormatVersion = "v1.0.0"

	maxHeaderLen = len(magic) + binary.MaxVarintLen64 + 64
)

// Writer appends records to a spill file. It is not safe for concurrent use;
// the coordinator is the only writer.
type Writer struct {
	f    *os.File
	w    *bufio.Writer
	path string
	off  int64
	hdr  [binary.MaxVarintLen64]byte
}

// CreateFile creates a uniquely named spill file in dir (os.TempDir() if empty).
func CreateFile(dir string) (*Writer, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create spill directory: %w", ErrIO, err)
	}

	path := filepath.Join(dir, "mapresults-"+uuid.NewString()+".spill")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: create spill file: %w", ErrIO, err)
	}

	w := &Writer{f: f, w: bufio.NewWriterSize(f, 64<<10), path: path}

	header := append([]byte(magic), binary.AppendUvarint(nil, uint64(len(FormatVersion)))...)
	header = append(header, FormatVersion...)

	if _, err := w.w.Write(header); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("%w: write spill header: %w", ErrIO, err)
	}

	w.off = int64(len(header))

	return w, nil
}

// Path returns the spill file path
func (w *Writer) Path() string {
	return w.path
}

// Size returns the number of bytes written so far, header included.
func (w *Writer) Size() int64 {
	return w.off
}

// Append writes one record and returns its offset.
func (w *Writer) Append(payload []byte) (int64, error) {
	off := w.off

	n := binary.PutUvarint(w.hdr[:], uint64(len(payload)))
	if _, err := w.w.Write(w.hdr[:n]); err != nil {
		return 0, fmt.Errorf("%w: append record: %w", ErrIO, err)
	}

	if _, err := w.w.Write(payload); err != nil {
		return 0, fmt.Errorf("%w: append record: %w", ErrIO, err)
	}

	w.off += int64(n + len(payload))

	return off, nil
}

// Close flushes buffered records and closes the file. The file is kept.
func (w *Writer) Close() error {
	flushErr := w.w.Flush()
	closeErr := w.f.Close()

	if err := errors.Join(flushErr, closeErr); err != nil {
		return fmt.Errorf("%w: close spill file: %w", ErrIO, err)
	}

	return nil
}

// Reader reads records by offset from its own file handle.
type Reader struct {
	f    *os.File
	size int64
	buf  []byte
}

// OpenFile opens a spill file and checks its header.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open spill file: %w", ErrIO, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat spill file: %w", ErrIO, err)
	}

	r := &Reader{f: f, size: info.Size()}

	if err := r.checkHeader(); err != nil {
		f.Close()
		return nil, err
	}

	return r, nil
}

func (r *Reader) checkHeader() error {
	hdr := make([]byte, min(int64(maxHeaderLen), r.size))
	if _, err := r.f.ReadAt(hdr, 0); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: read spill header: %w", ErrIO, err)
	}

	if len(hdr) < len(magic) || string(hdr[:len(magic)]) != magic {
		return fmt.Errorf("%w: %w: bad magic", ErrIO, ErrCorrupt)
	}

	vlen, n := binary.Uvarint(hdr[len(magic):])
	start := len(magic) + n
	if n <= 0 || vlen > uint64(len(hdr)-start) {
		return fmt.Errorf("%w: %w: bad version field", ErrIO, ErrCorrupt)
	}

	version := string(hdr[start : start+int(vlen)])
	if !semver.IsValid(version) {
		return fmt.Errorf("%w: %w: invalid version %q", ErrIO, ErrCorrupt, version)
	}

	if semver.Major(version) != semver.Major(FormatVersion) {
		return fmt.Errorf("%w: %w: file %s, reader %s", ErrIO, ErrIncompatibleVersion, version, FormatVersion)
	}

	return nil
}

// ReadAt returns the payload of the record starting at off. The returned
// slice is reused by the next call.
func (r *Reader) ReadAt(off int64) ([]byte, error) {
	if off < 0 || off >= r.size {
		return nil, fmt.Errorf("%w: %w: offset %d outside file of %d bytes", ErrIO, ErrCorrupt, off, r.size)
	}

	var hdr [binary.MaxVarintLen64]byte

	n, err := r.f.ReadAt(hdr[:min(int64(len(hdr)), r.size-off)], off)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: read record at %d: %w", ErrIO, off, err)
	}

	plen, hn := binary.Uvarint(hdr[:n])
	if hn <= 0 {
		return nil, fmt.Errorf("%w: %w: bad record length at %d", ErrIO, ErrCorrupt, off)
	}

	start := off + int64(hn)
	if plen > uint64(r.size-start) {
		return nil, fmt.Errorf("%w: %w: record at %d overruns file", ErrIO, ErrCorrupt, off)
	}

	if cap(r.buf) < int(plen) {
		r.buf = make([]byte, plen)
	}
	r.buf = r.buf[:plen]

	if _, err := r.f.ReadAt(r.buf, start); err != nil {
		return nil, fmt.Errorf("%w: read record at %d: %w", ErrIO, off, err)
	}

	return r.buf, nil
}

func (r *Reader) Close() error {
	return r.f.Close()
}
