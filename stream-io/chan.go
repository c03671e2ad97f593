package streamio

import (
	"context"
	"io"
)

// ChanSource 将chunk流适配为数据源, 流被关闭表示数据结束.
type ChanSource struct {
	stream <-chan []byte
}

// NewChanSource 返回ChanSource实例.
func NewChanSource(stream <-chan []byte) *ChanSource {
	return &ChanSource{stream: stream}
}

// Pull 从流中取出下一个chunk, ctx结束时返回ctx的错误.
func (s *ChanSource) Pull(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case chunk, ok := <-s.stream:
		if !ok {
			return nil, io.EOF
		}
		return chunk, nil
	}
}

// AsStream 在新的goroutine中依次发送chunks, 发送完毕或ctx结束后关闭流.
func AsStream(ctx context.Context, chunks ...[]byte) <-chan []byte {
	stream := make(chan []byte)
	go func() {
		defer close(stream)

		for _, c := range chunks {
			select {
			case <-ctx.Done():
				return
			case stream <- c:
			}
		}
	}()
	return stream
}
