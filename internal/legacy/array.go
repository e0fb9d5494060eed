package legacy

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"

	"github.com/gmggroup/omf-go/internal/omferr"
)

// decodeStringArray unmarshals a zlib-decompressed string array, stored in
// OMF1 as a plain JSON array with null standing in for an unset cell.
func decodeStringArray(raw []byte, out *[]*string) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return omferr.Wrap(omferr.DeserializationFailed, err)
	}
	return nil
}

// decompressArray reads ref.Length zlib-compressed bytes starting at
// ref.Start from source and returns the decompressed payload
// (original_source's array_decompressed_bytes, using compress/zlib as the
// direct stdlib equivalent of flate2::bufread::ZlibDecoder).
func decompressArray(source io.ReaderAt, ref legacyArrayRef) ([]byte, error) {
	raw := make([]byte, ref.Length)
	if _, err := source.ReadAt(raw, ref.Start); err != nil {
		return nil, omferr.IoErr(err)
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, omferr.Wrap(omferr.DeserializationFailed, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, omferr.Wrap(omferr.DeserializationFailed, err)
	}
	return out, nil
}

const float64Size = 8
const int64Size = 8

// readFloat64Array decodes a flat little-endian float64 array, mapping NaN
// to a null cell (original_source's "array of f64, with NaN as null").
func readFloat64Array(raw []byte) ([]*float64, error) {
	if len(raw)%float64Size != 0 {
		return nil, omferr.InvalidDataErr("scalar array length is not a multiple of 8 bytes")
	}
	n := len(raw) / float64Size
	out := make([]*float64, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint64(raw[i*float64Size:])
		v := math.Float64frombits(bits)
		if math.IsNaN(v) {
			continue
		}
		vv := v
		out[i] = &vv
	}
	return out, nil
}

// readInt64Array decodes a flat little-endian int64 array (dates/datetimes
// and mapped-data indices are stored this way in OMF1).
func readInt64Array(raw []byte) ([]int64, error) {
	if len(raw)%int64Size != 0 {
		return nil, omferr.InvalidDataErr("integer array length is not a multiple of 8 bytes")
	}
	n := len(raw) / int64Size
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		out[i] = int64(binary.LittleEndian.Uint64(raw[i*int64Size:]))
	}
	return out, nil
}

// readVectorArray decodes dims-wide rows of float64, any NaN component
// nulling the whole row (original_source's vertex/vector decode: "any
// component NaN makes the item null").
func readVectorArray(raw []byte, dims int) ([][]float64, error) {
	rowSize := dims * float64Size
	if rowSize == 0 || len(raw)%rowSize != 0 {
		return nil, omferr.InvalidDataErr("vector array length does not match row width")
	}
	n := len(raw) / rowSize
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, dims)
		anyNaN := false
		for d := 0; d < dims; d++ {
			bits := binary.LittleEndian.Uint64(raw[i*rowSize+d*float64Size:])
			v := math.Float64frombits(bits)
			if math.IsNaN(v) {
				anyNaN = true
			}
			row[d] = v
		}
		if anyNaN {
			continue
		}
		out[i] = row
	}
	return out, nil
}

// readIndexArray decodes an n-wide array of int64 vertex indices used by
// Segment/Triangle arrays, rejecting any index that does not fit a uint32
// (original_source's index_array conversion from i64 to u32).
func readIndexArray(raw []byte, width int) ([][]uint32, error) {
	ints, err := readInt64Array(raw)
	if err != nil {
		return nil, err
	}
	if len(ints)%width != 0 {
		return nil, omferr.InvalidDataErr("index array length does not match row width")
	}
	n := len(ints) / width
	out := make([][]uint32, n)
	for i := 0; i < n; i++ {
		row := make([]uint32, width)
		for d := 0; d < width; d++ {
			v := ints[i*width+d]
			if v < 0 || v > math.MaxUint32 {
				return nil, omferr.InvalidDataErr("legacy index out of uint32 range")
			}
			row[d] = uint32(v)
		}
		out[i] = row
	}
	return out, nil
}

// readColorArray decodes 3-wide rows of int64 RGB components (0-255, any
// out-of-range clamped) and appends a fully-opaque alpha, matching
// original_source's color decode ("colors are stored as i64 triples,
// clamped to u8, alpha is always 255").
func readColorArray(raw []byte) ([][4]uint8, error) {
	ints, err := readInt64Array(raw)
	if err != nil {
		return nil, err
	}
	if len(ints)%3 != 0 {
		return nil, omferr.InvalidDataErr("color array length is not a multiple of 3")
	}
	n := len(ints) / 3
	out := make([][4]uint8, n)
	for i := 0; i < n; i++ {
		out[i] = [4]uint8{
			clampByte(ints[i*3]),
			clampByte(ints[i*3+1]),
			clampByte(ints[i*3+2]),
			255,
		}
	}
	return out, nil
}

func clampByte(v int64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// readIndexNullableArray decodes a mapped-data index array, treating -1 as
// null and rejecting any value outside [0, nameCount) (original_source's
// index_array: "-1 is null, anything else out of range is
// IndexOutOfRange").
func readIndexNullableArray(raw []byte, nameCount int) ([]*uint32, error) {
	ints, err := readInt64Array(raw)
	if err != nil {
		return nil, err
	}
	out := make([]*uint32, len(ints))
	for i, v := range ints {
		if v == -1 {
			continue
		}
		if v < 0 || int(v) >= nameCount {
			return nil, omferr.InvalidDataErr("mapped data index out of range")
		}
		vv := uint32(v)
		out[i] = &vv
	}
	return out, nil
}
