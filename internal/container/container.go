// Package container implements the OMF binary container: a ZIP archive
// whose members are all stored uncompressed, whose archive comment carries
// the format version stamp, and whose index member holds the gzip-compressed
// JSON project tree (spec.md §4.1). It is grounded on original_source's
// src/file/zip_container.rs, adapted to klauspost/compress/zip for ZIP64
// support and to Go's io.ReaderAt-based random access.
package container

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/gmggroup/omf-go/internal/omferr"
	"github.com/gmggroup/omf-go/internal/storage"
)

// FormatName is the literal text stamped into the archive comment, followed
// by "<major>.<minor>[-<prerelease>]" (spec.md §4.1).
const FormatName = "Open Mining Format"

const (
	IndexName = "index.json.gz"
	parquetExt = ".parquet"
	pngExt     = ".png"
	jpegExt    = ".jpg"
)

// MemberKind is the closed set of non-index member kinds a Writer creates.
type MemberKind int

const (
	KindParquet MemberKind = iota
	KindPNG
	KindJPEG
)

func (k MemberKind) extension() string {
	switch k {
	case KindPNG:
		return pngExt
	case KindJPEG:
		return jpegExt
	default:
		return parquetExt
	}
}

// FileSpan is a member's byte range within the underlying archive, used to
// hand out an io.SectionReader without re-parsing the ZIP central directory
// per read (spec.md §4.1 "random access to each stream is cheap").
type FileSpan struct {
	Offset int64
	Size   int64
}

// Version is the parsed `Open Mining Format <major>.<minor>[-<prerelease>]`
// archive comment (spec.md §4.1).
type Version struct {
	Major, Minor uint32
	PreRelease   string
}

func (v Version) String() string {
	s := fmt.Sprintf("%s %d.%d", FormatName, v.Major, v.Minor)
	if v.PreRelease != "" {
		s += "-" + v.PreRelease
	}
	return s
}

// ParseVersion extracts the version stamp from a raw archive comment,
// mirroring original_source's get_version exactly (splits on the first
// space after the format name, then on '-' for the prerelease tag).
func ParseVersion(comment string) (Version, bool) {
	rest, ok := strings.CutPrefix(comment, FormatName)
	if !ok {
		return Version{}, false
	}
	rest, ok = strings.CutPrefix(rest, " ")
	if !ok {
		return Version{}, false
	}
	main, preRelease, _ := strings.Cut(rest, "-")
	majorStr, minorStr, ok := strings.Cut(main, ".")
	if !ok {
		return Version{}, false
	}
	if strings.Contains(minorStr, ".") {
		return Version{}, false
	}
	major, err := strconv.ParseUint(majorStr, 10, 32)
	if err != nil {
		return Version{}, false
	}
	minor, err := strconv.ParseUint(minorStr, 10, 32)
	if err != nil {
		return Version{}, false
	}
	return Version{Major: uint32(major), Minor: uint32(minor), PreRelease: preRelease}, true
}

// Archive is an opened, version-checked container ready to serve member
// spans and streams.
type Archive struct {
	source  storage.ReaderAtSeeker
	size    int64
	members map[string]FileSpan
	version Version
}

// Open parses the ZIP central directory, rejects any compressed member,
// requires index.json.gz to be present, and parses the version stamp from
// the archive comment (spec.md §4.1, §6 NotOmf/ZipMemberMissing/ZipError).
func Open(source storage.ReaderAtSeeker, size int64) (*Archive, error) {
	zr, err := zip.NewReader(source, size)
	if err != nil {
		return nil, omferr.Wrap(omferr.ZipError, err)
	}
	members := make(map[string]FileSpan, len(zr.File))
	indexFound := false
	for _, f := range zr.File {
		if f.Method != zip.Store {
			return nil, omferr.ZipErr("members may not be compressed")
		}
		offset, err := f.DataOffset()
		if err != nil {
			return nil, omferr.Wrap(omferr.ZipError, err)
		}
		if f.Name == IndexName {
			indexFound = true
		}
		members[f.Name] = FileSpan{Offset: offset, Size: int64(f.CompressedSize64)}
	}
	if !indexFound {
		return nil, omferr.ZipMemberMissingErr(IndexName)
	}
	version, ok := ParseVersion(zr.Comment)
	if !ok {
		return nil, omferr.NotOmfErr(zr.Comment)
	}
	return &Archive{source: source, size: size, members: members, version: version}, nil
}

func (a *Archive) Version() Version { return a.version }

// Filenames lists every member name, index included.
func (a *Archive) Filenames() []string {
	names := make([]string, 0, len(a.members))
	for name := range a.members {
		names = append(names, name)
	}
	return names
}

// Span returns a member's byte range, or ZipMemberMissing.
func (a *Archive) Span(name string) (FileSpan, error) {
	span, ok := a.members[name]
	if !ok {
		return FileSpan{}, omferr.ZipMemberMissingErr(name)
	}
	return span, nil
}

// Open returns a random-access view of one member, suitable for handing
// to a Parquet reader or an image decoder directly.
func (a *Archive) Open(name string) (*io.SectionReader, error) {
	span, err := a.Span(name)
	if err != nil {
		return nil, err
	}
	return io.NewSectionReader(a.source, span.Offset, span.Size), nil
}

// ReadAll reads an entire member into memory, used for the gzip-wrapped
// index and for image members (spec.md §4.1).
func (a *Archive) ReadAll(name string) ([]byte, error) {
	r, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
