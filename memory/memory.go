package memory

import (
	"encoding/binary"
	"io"
	"math"
)

type Int interface {
	int | uint | int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64
}

func ReadInt[T Int](r io.Reader) (T, error) {
	var value T
	err := binary.Read(r, binary.LittleEndian, &value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Fixed-offset accessors for in-place buffer edits. Callers bounds-check;
// everything is little-endian, int32 is two's complement and float32 is
// IEEE-754 single precision.

func Int32At(b []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(b[off:]))
}

func PutInt32At(b []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(b[off:], uint32(v))
}

func Float32At(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func PutFloat32At(b []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
}
