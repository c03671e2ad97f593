package quickreader

import (
	"context"
	"io"
)

// Source chunk数据源.
// Pull每次返回下一个chunk, 数据流结束时返回(nil, io.EOF), 之后的调用也必须返回io.EOF.
// 其他错误视为拉取失败. 返回的chunk归Reader所有, 数据源不能再修改它.
type Source interface {
	Pull(ctx context.Context) ([]byte, error)
}

// SourceFunc 将函数适配为Source.
type SourceFunc func(ctx context.Context) ([]byte, error)

// Pull 调用f.
func (f SourceFunc) Pull(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

type chunkSource struct {
	chunks [][]byte
	next   int
}

// FromChunks 返回按顺序产出chunks的内存数据源.
func FromChunks(chunks ...[]byte) Source {
	return &chunkSource{chunks: chunks}
}

func (s *chunkSource) Pull(_ context.Context) ([]byte, error) {
	if s.next >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.next]
	s.next++
	return chunk, nil
}

// Transform 返回一个新的数据源, 拉取到的每个chunk都先经过fn处理 (如解密, 解压).
// fn返回的错误视为拉取失败, io.EOF原样传递.
func Transform(src Source, fn func(chunk []byte) ([]byte, error)) Source {
	return SourceFunc(func(ctx context.Context) ([]byte, error) {
		chunk, err := src.Pull(ctx)
		if err != nil {
			return nil, err
		}
		return fn(chunk)
	})
}
