package compress

import (
	"archive/zip"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	streamio "github.com/usherasnick/quick-reader/stream-io"
)

// SnappyBlock 将每个chunk作为一个snappy block解压, 配合quickreader.Transform使用.
func SnappyBlock(chunk []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, chunk)
	if err != nil {
		return nil, errors.Wrap(err, "decode snappy block")
	}
	return out, nil
}

// NewSnappySource 返回解压snappy framed数据流的数据源.
func NewSnappySource(r io.Reader, cfg *streamio.ReaderSourceCfg) *streamio.ReaderSource {
	return streamio.NewReaderSource(snappy.NewReader(r), cfg)
}

// ZstdSource 解压zstd数据流的数据源.
type ZstdSource struct {
	*streamio.ReaderSource
	dec *zstd.Decoder
}

// NewZstdSource 返回ZstdSource实例, 用完后需要调用Close释放解码器.
func NewZstdSource(r io.Reader, cfg *streamio.ReaderSourceCfg) (*ZstdSource, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "new zstd decoder")
	}
	return &ZstdSource{ReaderSource: streamio.NewReaderSource(dec, cfg), dec: dec}, nil
}

// Close 释放解码器.
func (s *ZstdSource) Close() error {
	s.dec.Close()
	return nil
}

// ZipEntrySource 读取zip包中单个文件的数据源.
type ZipEntrySource struct {
	*streamio.ReaderSource
	zr *zip.ReadCloser
	fr io.ReadCloser
}

// OpenZipEntry 打开zip包archive中名为name的文件, 用完后需要调用Close.
func OpenZipEntry(archive, name string, cfg *streamio.ReaderSourceCfg) (*ZipEntrySource, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, errors.Wrapf(err, "open archive %s", archive)
	}

	for _, f := range zr.File {
		if f.Name != name || f.FileInfo().IsDir() {
			continue
		}
		fr, err := f.Open()
		if err != nil {
			zr.Close()
			return nil, errors.Wrapf(err, "open %s in %s", name, archive)
		}
		log.Debug().Str("archive", archive).Str("entry", name).Uint64("size", f.UncompressedSize64).Msg("zip entry opened")
		return &ZipEntrySource{
			ReaderSource: streamio.NewReaderSource(fr, cfg),
			zr:           zr,
			fr:           fr,
		}, nil
	}

	zr.Close()
	return nil, errors.Errorf("%s not found in %s", name, archive)
}

// Close 关闭文件和zip包.
func (s *ZipEntrySource) Close() error {
	err := s.fr.Close()
	if cerr := s.zr.Close(); err == nil {
		err = cerr
	}
	return err
}
