package quickreader

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Reader 从按chunk交付的数据流中读取定长字段, 分隔符结尾的字段和定宽数值 (非线程安全).
//
// 请求的数据完全落在当前chunk中时读操作同步完成并且不拷贝, 返回的切片引用chunk内存;
// 跨chunk时才拉取数据并拼接到新分配的缓冲区中.
type Reader struct {
	src Source

	buf    []byte // 当前chunk
	off    int    // 当前chunk中的读偏移
	closed bool
	eof    bool
	busy   bool // 存在未完成的Pending

	eofAsDelim  bool
	maxQueueLen int
	alloc       Allocator
	logger      zerolog.Logger
	metrics     *Metrics
}

// NewReader 返回Reader实例, cfg为nil时使用默认配置.
func NewReader(src Source, cfg *Cfg) *Reader {
	if cfg == nil {
		cfg = &Cfg{}
	}
	r := &Reader{
		src:         src,
		eofAsDelim:  cfg.EOFAsDelim,
		maxQueueLen: cfg.MaxQueueLen,
		alloc:       cfg.Allocator,
		metrics:     cfg.Metrics,
	}
	if r.maxQueueLen <= 0 {
		r.maxQueueLen = MaxQueueLen
	}
	if r.alloc == nil {
		r.alloc = defaultAllocator
	}
	if cfg.Logger != nil {
		r.logger = *cfg.Logger
	} else {
		r.logger = log.Logger
	}
	return r
}

// EOF 判断数据流是否已结束并且缓冲区已读完.
// 在第一次读操作 (或Pull) 之前没有意义.
func (r *Reader) EOF() bool {
	return r.eof
}

// EOFAsDelim 返回数据流结束是否可以作为分隔符.
func (r *Reader) EOFAsDelim() bool {
	return r.eofAsDelim
}

// SetEOFAsDelim 设置数据流结束是否可以作为分隔符.
func (r *Reader) SetEOFAsDelim(v bool) {
	r.eofAsDelim = v
}

// MaxQueueLen 返回最大累积长度.
func (r *Reader) MaxQueueLen() int {
	return r.maxQueueLen
}

// Buffered 返回当前chunk中未读的字节数.
func (r *Reader) Buffered() int {
	return len(r.buf) - r.off
}

// Pull 当前chunk已读完时拉取下一个chunk, 用于在第一次读之前探测空数据流.
// 当前chunk还有未读数据时什么也不做.
func (r *Reader) Pull(ctx context.Context) error {
	r.checkIdle()
	if r.Buffered() > 0 {
		return nil
	}
	return r.pull(ctx)
}

// Chunk 返回当前chunk中未读的部分, 当前chunk已读完时先拉取一个新的chunk.
func (r *Reader) Chunk(ctx context.Context) ([]byte, error) {
	r.checkIdle()
	return r.chunk(ctx)
}

func (r *Reader) chunk(ctx context.Context) ([]byte, error) {
	if r.Buffered() == 0 {
		chunk, err := r.pullChunk(ctx)
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			return nil, ErrNoMoreData
		}
		r.buf, r.off = chunk, 0
	}
	end := len(r.buf)
	out := r.buf[r.off:end:end]
	r.off = end
	r.pullAhead(ctx)
	return out, nil
}

func (r *Reader) checkIdle() {
	if r.busy {
		panic("quickreader: read issued while a pending read is unresolved")
	}
}

// pullChunk 返回下一个非空chunk, 跳过空chunk.
// 数据源结束时关闭Reader并返回(nil, nil).
func (r *Reader) pullChunk(ctx context.Context) ([]byte, error) {
	if r.closed {
		return nil, ErrNoMoreData
	}
	for {
		chunk, err := r.src.Pull(ctx)
		if errors.Is(err, io.EOF) {
			r.close("source exhausted")
			return nil, nil
		}
		if err != nil {
			r.metrics.pullFailed()
			r.logger.Warn().Err(err).Msg("failed to pull chunk")
			r.close("pull failed")
			return nil, failedToPull(err)
		}
		if len(chunk) > 0 {
			r.metrics.pulled(len(chunk))
			return chunk, nil
		}
	}
}

func (r *Reader) pull(ctx context.Context) error {
	chunk, err := r.pullChunk(ctx)
	if err != nil {
		return err
	}
	if chunk != nil {
		r.buf, r.off = chunk, 0
	}
	return nil
}

// pullAhead 在当前chunk刚好读完时预取下一个chunk, 使EOF()立即准确.
// 拉取失败时Reader已被关闭, 错误留给下一次读操作.
func (r *Reader) pullAhead(ctx context.Context) {
	if r.closed {
		r.eof = true
		return
	}
	_ = r.pull(ctx)
}

func (r *Reader) close(reason string) {
	r.closed = true
	r.eof = true
	r.buf, r.off = nil, 0
	r.logger.Debug().Str("reason", reason).Msg("reader closed")
}
