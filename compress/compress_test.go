package compress

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quickreader "github.com/usherasnick/quick-reader/quick-reader"
	streamio "github.com/usherasnick/quick-reader/stream-io"
)

func TestSnappyBlock(t *testing.T) {
	ctx := context.Background()
	blocks := [][]byte{
		snappy.Encode(nil, []byte("hello ")),
		snappy.Encode(nil, []byte("world\x00")),
	}
	r := quickreader.NewReader(quickreader.Transform(quickreader.FromChunks(blocks...), SnappyBlock), nil)

	s, err := r.Txt().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello world", s)
	assert.True(t, r.EOF())
}

func TestSnappyBlockCorrupt(t *testing.T) {
	ctx := context.Background()
	r := quickreader.NewReader(quickreader.Transform(quickreader.FromChunks([]byte{0xff, 0xff, 0xff}), SnappyBlock), nil)

	_, err := r.U8().Get(ctx)
	assert.True(t, errors.Is(err, quickreader.ErrFailedToPull))
	assert.Contains(t, err.Error(), "decode snappy block")
}

func TestSnappySource(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	w := snappy.NewBufferedWriter(&buf)
	_, err := w.Write([]byte("alpha\nbeta\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := quickreader.NewReader(NewSnappySource(&buf, &streamio.ReaderSourceCfg{ChunkSize: 4}), nil)
	s, err := r.TxtLn().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alpha", s)

	s, err = r.TxtLn().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "beta", s)
	assert.True(t, r.EOF())
}

func TestZstdSource(t *testing.T) {
	ctx := context.Background()
	payload := bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x04}, 1024)

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	frame := enc.EncodeAll(payload, nil)
	require.NoError(t, enc.Close())

	src, err := NewZstdSource(bytes.NewReader(frame), &streamio.ReaderSourceCfg{ChunkSize: 100})
	require.NoError(t, err)
	defer src.Close()

	r := quickreader.NewReader(src, nil)
	var sum uint64
	for !r.EOF() {
		v, err := r.U32BE().Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint32(0x01020304), v)
		sum++
	}
	assert.Equal(t, uint64(1024), sum)
}

func TestOpenZipEntry(t *testing.T) {
	ctx := context.Background()
	archive := filepath.Join(t.TempDir(), "data.zip")
	writeZip(t, archive, map[string]string{
		"a.txt":     "not this one",
		"dir/b.txt": "x,y,z",
	})

	src, err := OpenZipEntry(archive, "dir/b.txt", &streamio.ReaderSourceCfg{ChunkSize: 2})
	require.NoError(t, err)
	defer src.Close()

	r := quickreader.NewReader(src, &quickreader.Cfg{EOFAsDelim: true})
	var fields []string
	for !r.EOF() {
		s, err := r.TxtTo(',').Get(ctx)
		require.NoError(t, err)
		fields = append(fields, s)
	}
	assert.Equal(t, []string{"x", "y", "z"}, fields)
}

func TestOpenZipEntryNotFound(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "data.zip")
	writeZip(t, archive, map[string]string{"a.txt": "a"})

	_, err := OpenZipEntry(archive, "b.txt", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.txt not found")
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}
