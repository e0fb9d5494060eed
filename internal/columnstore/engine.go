package columnstore

import (
	"context"
	"io"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/memory"
	"github.com/apache/arrow/go/v16/parquet"
	"github.com/apache/arrow/go/v16/parquet/file"
	"github.com/apache/arrow/go/v16/parquet/pqarrow"

	"github.com/gmggroup/omf-go/internal/omferr"
)

// writeRecords streams items from src through appendRow into a fresh
// pqarrow file writer, flushing a row group every RowGroupLength items
// (spec.md §4.2 "Write path"). It returns the total item count written.
func writeRecords[T any](
	w io.Writer,
	schema *arrow.Schema,
	props *parquet.WriterProperties,
	src Source[T],
	appendRow func(rb *array.RecordBuilder, item T) error,
) (uint64, error) {
	arrowProps := pqarrow.DefaultWriterProps()
	fileWriter, err := pqarrow.NewFileWriter(schema, w, props, arrowProps)
	if err != nil {
		return 0, omferr.Wrap(omferr.ParquetError, err)
	}
	defer fileWriter.Close()

	rb := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer rb.Release()

	var count uint64
	buffered := 0
	flush := func() error {
		if buffered == 0 {
			return nil
		}
		rec := rb.NewRecord()
		defer rec.Release()
		if err := fileWriter.WriteBuffered(rec); err != nil {
			return omferr.Wrap(omferr.ParquetError, err)
		}
		buffered = 0
		return nil
	}

	for {
		item, ok, err := src()
		if err != nil {
			return count, err
		}
		if !ok {
			break
		}
		if err := appendRow(rb, item); err != nil {
			return count, err
		}
		count++
		buffered++
		if buffered >= RowGroupLength {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}
	if err := flush(); err != nil {
		return count, err
	}
	return count, nil
}

// recordSource opens a Parquet member for reading and returns the matched
// Arrow schema plus a pull-based source of row batches (spec.md §4.2 "Read
// path"): the Parquet row-group reader is the inner stage of the two-level
// iterator; callers add per-item checks on top.
type recordSource struct {
	fileReader   *file.Reader
	recordReader pqarrow.RecordReader
	schema       *arrow.Schema
}

func openRecordSource(r parquet.ReaderAtSeeker) (*recordSource, error) {
	fileReader, err := file.NewParquetReader(r)
	if err != nil {
		return nil, omferr.Wrap(omferr.NotParquetData, err)
	}
	arrowReader, err := pqarrow.NewFileReader(fileReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, omferr.Wrap(omferr.ParquetError, err)
	}
	schema, err := arrowReader.Schema()
	if err != nil {
		return nil, omferr.Wrap(omferr.ParquetError, err)
	}
	recordReader, err := arrowReader.GetRecordReader(context.Background(), nil, nil)
	if err != nil {
		return nil, omferr.Wrap(omferr.ParquetError, err)
	}
	return &recordSource{fileReader: fileReader, recordReader: recordReader, schema: schema}, nil
}

func (s *recordSource) close() error {
	return s.fileReader.Close()
}

// rowCursor walks the records yielded by a recordSource one row at a time,
// so kind-specific Sink implementations only need a per-row decode function.
type rowCursor struct {
	src     *recordSource
	current arrow.Record
	row     int64
}

func newRowCursor(src *recordSource) *rowCursor {
	return &rowCursor{src: src}
}

// next advances to the next row, fetching a new record batch when the
// current one is exhausted. ok is false (err nil) at end of stream.
func (c *rowCursor) next() (rec arrow.Record, row int64, ok bool, err error) {
	for c.current == nil || c.row >= c.current.NumRows() {
		if c.current != nil {
			c.current.Release()
			c.current = nil
		}
		next, rerr := c.src.recordReader.Read()
		if rerr == io.EOF || next == nil {
			return nil, 0, false, nil
		}
		if rerr != nil {
			return nil, 0, false, omferr.Wrap(omferr.ParquetError, rerr)
		}
		c.current = next
		c.row = 0
	}
	row = c.row
	c.row++
	return c.current, row, true, nil
}

func (c *rowCursor) close() error {
	if c.current != nil {
		c.current.Release()
	}
	return c.src.close()
}
