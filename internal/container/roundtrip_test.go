package container

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderOpenRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	b := NewBuilder(&buf)

	indexData := []byte(`{"name":"test"}`)
	require.NoError(t, b.WriteIndex(indexData, 6))

	member, name, err := b.Member(KindParquet)
	require.NoError(t, err)
	require.Equal(t, "1.parquet", name)
	_, err = member.Write([]byte("parquet-bytes"))
	require.NoError(t, err)

	require.NoError(t, b.Finish(Version{Major: 2, Minor: 0}))

	reader := bytes.NewReader(buf.Bytes())
	archive, err := Open(reader, int64(buf.Len()))
	require.NoError(t, err)
	require.Equal(t, Version{Major: 2, Minor: 0}, archive.Version())

	got, err := archive.ReadIndex(0)
	require.NoError(t, err)
	require.Equal(t, indexData, got)

	member1, err := archive.ReadAll("1.parquet")
	require.NoError(t, err)
	require.Equal(t, []byte("parquet-bytes"), member1)
}

func TestOpenMissingIndex(t *testing.T) {
	var buf bytes.Buffer
	b := NewBuilder(&buf)
	_, _, err := b.Member(KindParquet)
	require.NoError(t, err)
	require.NoError(t, b.Finish(Version{Major: 2, Minor: 0}))

	reader := bytes.NewReader(buf.Bytes())
	_, err = Open(reader, int64(buf.Len()))
	require.Error(t, err)
}
