package container

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/gmggroup/omf-go/internal/omferr"
)

// limitedReader wraps an io.Reader and fails with LimitExceeded(json_bytes)
// as soon as more than limit bytes have been read, rather than silently
// truncating (spec.md §4.5 "enforces json_bytes").
type limitedReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.read >= l.limit {
		var probe [1]byte
		if n, err := l.r.Read(probe[:]); n == 0 {
			return 0, err
		}
		return 0, omferr.LimitExceededErr(omferr.JSONBytes, fmt.Sprintf(
			"uncompressed index exceeds configured limit of %s", humanize.IBytes(uint64(l.limit))))
	}
	if int64(len(p)) > l.limit-l.read {
		p = p[:l.limit-l.read]
	}
	n, err := l.r.Read(p)
	l.read += int64(n)
	return n, err
}

// ReadIndex decompresses the index member, enforcing jsonBytesLimit on the
// uncompressed size (spec.md §4.5 "Reader ... maximum uncompressed JSON
// bytes (default 1 MiB)"). A non-positive limit disables the check.
func (a *Archive) ReadIndex(jsonBytesLimit int64) ([]byte, error) {
	r, err := a.Open(IndexName)
	if err != nil {
		return nil, err
	}
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, omferr.Wrap(omferr.DeserializationFailed, err)
	}
	defer gz.Close()

	var reader io.Reader = gz
	if jsonBytesLimit > 0 {
		reader = &limitedReader{r: gz, limit: jsonBytesLimit}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		if ofe, ok := err.(*omferr.Error); ok {
			return nil, ofe
		}
		return nil, omferr.Wrap(omferr.DeserializationFailed, err)
	}
	return data, nil
}
