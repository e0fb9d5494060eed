// Package columnstore implements C2 from spec.md §4.2: it maps every
// logical array kind onto one or more Parquet schema variants and provides
// streaming row-group writers and per-item checked readers over them. It is
// built on github.com/apache/arrow/go/v16/parquet (the teacher's choice in
// internal/pqutil and internal/geoparquet), using the Arrow-backed
// pqarrow.FileWriter/FileReader the same way internal/geoparquet/featurewriter.go
// and internal/geoparquet/recordreader.go do, but with fixed, hand-declared
// schemas instead of ones inferred from GeoJSON features.
package columnstore

import (
	"github.com/apache/arrow/go/v16/parquet"
	"github.com/apache/arrow/go/v16/parquet/compress"
)

// RowGroupLength is the approximate number of items per Parquet row group
// (spec.md §4.2 "≈ 1 Mi items").
const RowGroupLength = 1 << 20

// WriterProps builds the shared Parquet writer properties: gzip at the
// given level, statistics disabled, plain encoding, dictionary disabled
// (spec.md §4.2 "Write path").
func WriterProps(compressionLevel int) *parquet.WriterProperties {
	return parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Gzip),
		parquet.WithCompressionLevel(compressionLevel),
		parquet.WithStats(false),
		parquet.WithDictionaryDefault(false),
		parquet.WithEncoding(parquet.Encodings.Plain),
		parquet.WithMaxRowGroupLength(RowGroupLength),
	)
}

// ClampCompression clamps a requested level into the 0..=9 range accepted
// by Writer.SetCompression (spec.md §4.6).
func ClampCompression(level int) int {
	if level < 0 {
		return 0
	}
	if level > 9 {
		return 9
	}
	return level
}

// Source pulls the next item from a caller-supplied iterator. It returns
// ok=false with a nil error once exhausted. This is the "caller iterator"
// spec.md §4.2's write path streams through a Writer method.
type Source[T any] func() (item T, ok bool, err error)

// SliceSource adapts an in-memory slice to a Source, for tests and for
// small arrays (names, gradients, boundaries) that are rarely large enough
// to warrant true streaming.
func SliceSource[T any](items []T) Source[T] {
	i := 0
	return func() (T, bool, error) {
		if i >= len(items) {
			var zero T
			return zero, false, nil
		}
		v := items[i]
		i++
		return v, true, nil
	}
}

// Sink is the reciprocal of Source: a pull-based, checked reader over a
// column store member (spec.md §9 "Two-level iterator"). Next returns
// ok=false with a nil error at end of stream; a non-nil error (including an
// *omferr.Error with Kind InvalidData) aborts iteration at the offending
// item without discarding progress already yielded.
type Sink[T any] interface {
	Next() (item T, ok bool, err error)
	Close() error
}
