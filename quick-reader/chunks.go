package quickreader

import (
	"context"
	"iter"
)

// Chunks 以chunk切片的形式读取n个字节, 不拷贝内存.
// 依次产出当前chunk的剩余部分, 完整的后续chunk, 最后一个chunk的头部; 多出的部分留在Reader中.
// n为0时产出一个空切片. 迭代中途退出时, 未产出的数据仍然可以继续读取.
func (r *Reader) Chunks(ctx context.Context, n int) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		r.checkIdle()
		if n < 0 {
			yield(nil, outOfRange(n))
			return
		}
		r.busy = true
		defer func() {
			r.busy = false
			if r.Buffered() == 0 {
				r.pullAhead(ctx)
			}
		}()

		buf, pos := r.buf, r.off
		rem := len(buf) - pos
		if n < rem {
			end := pos + n
			r.off = end
			yield(buf[pos:end:end], nil)
			return
		}

		end := len(buf)
		tail := buf[pos:end:end]
		r.off = end
		if n == rem {
			yield(tail, nil)
			return
		}
		if len(tail) > 0 && !yield(tail, nil) {
			return
		}

		num := len(tail)
		for {
			chunk, err := r.pullChunk(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if chunk == nil {
				yield(nil, ErrNoMoreData)
				return
			}
			end := num + len(chunk)
			exceed := end - n

			if exceed > 0 {
				head := len(chunk) - exceed
				r.buf, r.off = chunk, head
				yield(chunk[:head:head], nil)
				return
			}
			r.buf, r.off = chunk, len(chunk)
			if !yield(chunk, nil) || exceed == 0 {
				return
			}
			num = end
		}
	}
}

// ChunksToEnd 读取到数据流结束, 但保留最后n个字节在Reader中, 用于之后解析尾部结构.
// n为0时产出所有剩余的chunk.
//
// 保留的尾部读完之前EOF()为false. n超过最大累积长度时返回OutOfRange,
// 数据流不足n个字节时返回NoMoreData.
func (r *Reader) ChunksToEnd(ctx context.Context, n int) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		r.checkIdle()
		if n == 0 {
			r.chunksToEnd(ctx, yield)
			return
		}
		if n < 0 || n > r.maxQueueLen {
			yield(nil, outOfRange(n))
			return
		}
		r.busy = true
		defer func() { r.busy = false }()

		trailer := r.buf[r.off:]
		r.buf, r.off = nil, 0

		// 中途退出时把未产出的尾部放回Reader
		emit := func(joined []byte) bool {
			if len(joined) <= n {
				trailer = joined
				return true
			}
			cut := len(joined) - n
			trailer = joined[cut:]
			if yield(joined[:cut:cut], nil) {
				return true
			}
			r.buf, r.off = trailer, 0
			return false
		}

		if !emit(trailer) {
			return
		}
		for {
			chunk, err := r.pullChunk(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if chunk == nil {
				break
			}
			joined := r.alloc(len(trailer) + len(chunk))[:len(trailer)+len(chunk)]
			copy(joined[copy(joined, trailer):], chunk)
			r.metrics.assembled(len(joined))

			if !emit(joined) {
				return
			}
		}

		if len(trailer) != n {
			yield(nil, ErrNoMoreData)
			return
		}
		r.eof = false
		r.buf, r.off = trailer, 0
	}
}

func (r *Reader) chunksToEnd(ctx context.Context, yield func([]byte, error) bool) {
	r.busy = true
	defer func() { r.busy = false }()

	for !r.eof {
		chunk, err := r.chunk(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		if !yield(chunk, nil) {
			return
		}
	}
}
