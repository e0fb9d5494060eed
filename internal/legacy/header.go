// Package legacy converts OMF1 files (the pre-container, single-JSON-blob
// predecessor format) into the current model.Project tree, grounded on
// original_source's src/omf1 module. OMF1 has no ZIP container: a fixed
// 60-byte header is followed by zlib-compressed binary array blocks and a
// trailing flat JSON object keyed by UUID, each record tagged with a
// "__class__" discriminator.
package legacy

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/google/uuid"

	"github.com/gmggroup/omf-go/internal/omferr"
)

// headerSize is the fixed OMF1 preamble: 4-byte magic, 32-byte version
// string, 16-byte big-endian project UUID, 8-byte little-endian JSON
// offset (original_source's omf1::reader::read_header).
const headerSize = 4 + 32 + 16 + 8

// magic is OMF1's four-byte file signature, matching neither OMF2's ZIP
// local-file-header magic nor any other known format.
var magic = [4]byte{0x84, 0x83, 0x82, 0x81}

// wantVersion is the only OMF1 version string this converter accepts;
// original_source rejects anything else with UnsupportedVersion rather than
// attempting a best-effort read.
const wantVersion = "OMF-v0.9.0"

// Header is OMF1's fixed 60-byte preamble.
type Header struct {
	ProjectUUID uuid.UUID
	JSONOffset  int64
}

// Detect reports whether data begins with the OMF1 magic number, mirroring
// original_source's Converter::detect (only the four magic bytes are
// examined; used by callers that need to choose between an OMF1 and OMF2
// reader before committing to one).
func Detect(data []byte) bool {
	return len(data) >= len(magic) && bytes.Equal(data[:len(magic)], magic[:])
}

// ReadHeader parses the 60-byte OMF1 preamble from the start of r, validating
// the magic number and exact version string (spec.md §4.7 / SPEC_FULL §C7).
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, omferr.NotOmfErr("file is shorter than the OMF1 header")
	}
	if !bytes.Equal(buf[:4], magic[:]) {
		return Header{}, omferr.NotOmfErr("missing OMF1 magic number")
	}
	version := string(bytes.TrimRight(buf[4:36], "\x00"))
	if version != wantVersion {
		return Header{}, omferr.NotOmfErr("unsupported OMF1 version " + version)
	}
	projectUUID, err := uuid.FromBytes(buf[36:52])
	if err != nil {
		return Header{}, omferr.Wrap(omferr.DeserializationFailed, err)
	}
	offset := int64(binary.LittleEndian.Uint64(buf[52:60]))
	return Header{ProjectUUID: projectUUID, JSONOffset: offset}, nil
}
