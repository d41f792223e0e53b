package tools

import (
	"encoding/binary"
	"math"
)

// Encodes the given int as a 4 byte little endian unsigned integer
func ConvertIntToByteArray(value int) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, uint32(value))
	return out
}

// Converts a slice of float64 into a little endian float32 byte slice, truncating the precision of every value
func ConvertTruncateFloat64ToFloat32ByteArray(values []float64) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(v)))
	}
	return out
}

// Converts a slice of float32 into a little endian byte slice
func ConvertFloat32ToByteArray(values []float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// Decodes a little endian float32 byte slice. Trailing bytes not forming a full value are ignored.
func ConvertByteArrayToFloat32(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

// Returns the number of bytes needed to bring length up to a multiple of alignment
func PaddingLength(length int, alignment int) int {
	return (alignment - length%alignment) % alignment
}

// Returns data followed by pad bytes up to a multiple of alignment. data itself is never written to.
func PadBytes(data []byte, alignment int, pad byte) []byte {
	n := PaddingLength(len(data), alignment)
	if n == 0 {
		return data
	}
	out := make([]byte, len(data), len(data)+n)
	copy(out, data)
	for ; n > 0; n-- {
		out = append(out, pad)
	}
	return out
}
