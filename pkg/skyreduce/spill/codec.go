package spill

import (
	"encoding/binary"
	"fmt"
	"math"

	"pkg.jsn.cam/skyreduce/pkg/storage"
)

// Codec is the serialization contract for spilled values and disk-index keys.
// Append must produce a payload that Decode accepts in full.
type Codec[T any] interface {
	Append(dst []byte, v T) ([]byte, error)
	Decode(src []byte) (T, error)
}

// StringCodec stores strings as raw bytes.
type StringCodec struct{}

func (StringCodec) Append(dst []byte, v string) ([]byte, error) {
	return append(dst, v...), nil
}

func (StringCodec) Decode(src []byte) (string, error) {
	return string(src), nil
}

// BytesCodec stores byte slices verbatim.
type BytesCodec struct{}

func (BytesCodec) Append(dst []byte, v []byte) ([]byte, error) {
	return append(dst, v...), nil
}

func (BytesCodec) Decode(src []byte) ([]byte, error) {
	return append([]byte(nil), src...), nil
}

// Int64Codec stores integers as zig-zag varints.
type Int64Codec struct{}

func (Int64Codec) Append(dst []byte, v int64) ([]byte, error) {
	return binary.AppendVarint(dst, v), nil
}

func (Int64Codec) Decode(src []byte) (int64, error) {
	v, n := binary.Varint(src)
	if n <= 0 || n != len(src) {
		return 0, fmt.Errorf("%w: bad varint payload (%d bytes)", ErrCorrupt, len(src))
	}

	return v, nil
}

// IntCodec stores ints as zig-zag varints.
type IntCodec struct{}

func (IntCodec) Append(dst []byte, v int) ([]byte, error) {
	return binary.AppendVarint(dst, int64(v)), nil
}

func (IntCodec) Decode(src []byte) (int, error) {
	v, err := Int64Codec{}.Decode(src)
	return int(v), err
}

// Float64Codec stores IEEE 754 bits, little endian.
type Float64Codec struct{}

func (Float64Codec) Append(dst []byte, v float64) ([]byte, error) {
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v)), nil
}

func (Float64Codec) Decode(src []byte) (float64, error) {
	if len(src) != 8 {
		return 0, fmt.Errorf("%w: float64 payload is %d bytes", ErrCorrupt, len(src))
	}

	return math.Float64frombits(binary.LittleEndian.Uint64(src)), nil
}

// JSONCodec stores any JSON-marshalable T.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Append(dst []byte, v T) ([]byte, error) {
	return storage.AppendJSON(dst, v)
}

func (JSONCodec[T]) Decode(src []byte) (T, error) {
	var v T
	err := storage.DecodeJSON(src, &v)

	return v, err
}
