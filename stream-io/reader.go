package streamio

/* io.Reader的读取规则与chunk的对应关系

1. 一次Read()最多读取len(p)个字节, 对应一个chunk, chunk长度不超过ChunkSize.
2. Read()返回n>0并且err!=nil时, 先交付n个字节, 错误留到下一次Pull再返回.
3. Read()返回n=0, err=nil不代表结束, 交付一个空chunk, 由Reader跳过并继续拉取.
4. Read()返回io.EOF时数据流结束, 之后的Pull一直返回io.EOF.

*/

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	__DefaultChunkSize = 16 * 1024
)

// ReaderSourceCfg ReaderSource配置
type ReaderSourceCfg struct {
	ChunkSize int // 单个chunk的最大长度
}

// ReaderSource 将io.Reader适配为chunk数据源.
// 每次Pull分配新的缓冲区, 交付出去的chunk不会被复用.
type ReaderSource struct {
	r         io.Reader
	chunkSize int
	err       error // Read返回的错误, 之后的Pull都返回它
}

// NewReaderSource 返回ReaderSource实例, cfg为nil时使用默认配置.
func NewReaderSource(r io.Reader, cfg *ReaderSourceCfg) *ReaderSource {
	if cfg == nil {
		cfg = &ReaderSourceCfg{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = __DefaultChunkSize
	}
	return &ReaderSource{r: r, chunkSize: cfg.ChunkSize}
}

// Pull 执行一次Read并返回读到的字节.
func (s *ReaderSource) Pull(ctx context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := make([]byte, s.chunkSize)
	n, err := s.r.Read(p)
	if err != nil {
		if err != io.EOF {
			err = errors.Wrap(err, "read chunk")
		}
		s.err = err
		if n > 0 {
			return p[:n], nil
		}
		return nil, err
	}
	return p[:n], nil
}

// FileSource 文件数据源.
type FileSource struct {
	*ReaderSource
	f *os.File
}

// OpenFile 打开文件并返回FileSource实例, 用完后需要调用Close.
func OpenFile(path string, cfg *ReaderSourceCfg) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	log.Debug().Str("path", path).Msg("file source opened")
	return &FileSource{ReaderSource: NewReaderSource(f, cfg), f: f}, nil
}

// Close 关闭文件.
func (s *FileSource) Close() error {
	return s.f.Close()
}
