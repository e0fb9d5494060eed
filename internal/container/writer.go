package container

import (
	"compress/gzip"
	"io"
	"strconv"

	"github.com/klauspost/compress/zip"

	"github.com/gmggroup/omf-go/internal/omferr"
)

// Builder streams container members one at a time into a fresh archive,
// assigning monotonically increasing numeric basenames to array/image
// members (spec.md §4.1 "numeric basenames").
type Builder struct {
	zw      *zip.Writer
	nextID  uint64
	members []string
}

// NewBuilder wraps a random-access sink. The sink need not be seekable for
// klauspost/compress/zip to produce a valid archive; it patches sizes via
// data descriptors when the destination cannot be seeked back into.
func NewBuilder(sink io.Writer) *Builder {
	return &Builder{zw: zip.NewWriter(sink), nextID: 1}
}

// Member opens a fresh container member ready for streamed writes. kind
// selects the basename's extension; the index member is opened separately
// via OpenIndex.
func (b *Builder) Member(kind MemberKind) (io.Writer, string, error) {
	name := strconv.FormatUint(b.nextID, 10) + kind.extension()
	b.nextID++
	w, err := b.open(name)
	if err != nil {
		return nil, "", err
	}
	return w, name, nil
}

// OpenIndex opens the fixed index.json.gz member.
func (b *Builder) OpenIndex() (io.Writer, error) {
	return b.open(IndexName)
}

func (b *Builder) open(name string) (io.Writer, error) {
	hdr := &zip.FileHeader{
		Name:   name,
		Method: zip.Store,
	}
	hdr.SetMode(0o644)
	w, err := b.zw.CreateHeader(hdr)
	if err != nil {
		return nil, omferr.Wrap(omferr.ZipError, err)
	}
	b.members = append(b.members, name)
	return w, nil
}

// Filenames lists every member opened so far.
func (b *Builder) Filenames() []string { return append([]string(nil), b.members...) }

// Finish stamps the archive comment with the format version and closes the
// ZIP central directory (spec.md §4.1, §4.5 "finish ... stamps the archive
// comment with this library's format version").
func (b *Builder) Finish(version Version) error {
	b.zw.SetComment(version.String())
	if err := b.zw.Close(); err != nil {
		return omferr.Wrap(omferr.ZipError, err)
	}
	return nil
}

// WriteIndex gzip-compresses data at the given level and writes it as the
// index member in one call, used by Writer.Finish.
func (b *Builder) WriteIndex(data []byte, level int) error {
	w, err := b.OpenIndex()
	if err != nil {
		return err
	}
	gz, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		return omferr.Wrap(omferr.Io, err)
	}
	if _, err := gz.Write(data); err != nil {
		return omferr.IoErr(err)
	}
	if err := gz.Close(); err != nil {
		return omferr.IoErr(err)
	}
	return nil
}
