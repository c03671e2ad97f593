package streamio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quickreader "github.com/usherasnick/quick-reader/quick-reader"
)

var (
	_ quickreader.Source = (*ReaderSource)(nil)
	_ quickreader.Source = (*FileSource)(nil)
	_ quickreader.Source = (*ChanSource)(nil)
)

func TestReaderSourceChunkSize(t *testing.T) {
	src := NewReaderSource(bytes.NewReader([]byte("abcdefg")), &ReaderSourceCfg{ChunkSize: 3})
	ctx := context.Background()

	var chunks []string
	for {
		c, err := src.Pull(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		chunks = append(chunks, string(c))
	}
	assert.Equal(t, []string{"abc", "def", "g"}, chunks)

	_, err := src.Pull(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestReaderSourceDataWithEOF(t *testing.T) {
	src := NewReaderSource(iotest.DataErrReader(bytes.NewReader([]byte("xyz"))), nil)
	ctx := context.Background()

	c, err := src.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, "xyz", string(c))

	_, err = src.Pull(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestReaderSourceDataWithError(t *testing.T) {
	boom := errors.New("connection reset")
	src := NewReaderSource(io.MultiReader(
		bytes.NewReader([]byte{1, 2}),
		iotest.ErrReader(boom),
	), nil)
	r := quickreader.NewReader(src, nil)
	ctx := context.Background()

	b, err := r.Bytes(2).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)
	assert.True(t, r.EOF())

	r = quickreader.NewReader(NewReaderSource(iotest.ErrReader(boom), nil), nil)
	_, err = r.U8().Get(ctx)
	assert.True(t, errors.Is(err, quickreader.ErrFailedToPull))
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "read chunk: connection reset")
}

func TestReaderSourceOneByte(t *testing.T) {
	src := NewReaderSource(iotest.OneByteReader(bytes.NewReader([]byte{0x10, 0x11, 0x12, 0x13, 'h', 'i', 0})), nil)
	r := quickreader.NewReader(src, nil)
	ctx := context.Background()

	v, err := r.U32BE().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x10111213), v)

	s, err := r.Txt().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
	assert.True(t, r.EOF())
}

func TestReaderSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewReaderSource(bytes.NewReader([]byte{1}), nil)
	_, err := src.Pull(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree"), 0644))

	src, err := OpenFile(path, &ReaderSourceCfg{ChunkSize: 2})
	require.NoError(t, err)
	defer src.Close()

	r := quickreader.NewReader(src, &quickreader.Cfg{EOFAsDelim: true})
	ctx := context.Background()

	var lines []string
	for !r.EOF() {
		s, err := r.TxtLn().Get(ctx)
		require.NoError(t, err)
		lines = append(lines, s)
	}
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
