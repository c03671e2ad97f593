package quickreader

import (
	"context"

	fasttypeconversion "github.com/usherasnick/quick-reader/fast-type-conversion"
)

// Bytes 读取n个字节.
// 结果完全落在当前chunk中时返回引用chunk内存的切片, 否则拼接到新分配的缓冲区中.
// n超过最大累积长度时返回OutOfRange, Reader仍可继续使用.
func (r *Reader) Bytes(n int) Result[[]byte] {
	r.checkIdle()
	if n < 0 {
		return failed[[]byte](outOfRange(n))
	}
	buf, pos := r.buf, r.off
	rem := len(buf) - pos
	if n < rem {
		end := pos + n
		r.off = end
		return ready(buf[pos:end:end])
	}
	if n == rem {
		end := len(buf)
		r.off = end
		return drained(r, buf[pos:end:end])
	}
	if n > r.maxQueueLen {
		return failed[[]byte](outOfRange(n))
	}
	return deferred(r, func(ctx context.Context) ([]byte, error) {
		return r.assemble(ctx, n)
	})
}

// Skip 跳过n个字节并返回n. 与Bytes逻辑相同, 但不分配也不拷贝内存.
func (r *Reader) Skip(n int) Result[int] {
	r.checkIdle()
	if n < 0 {
		return failed[int](outOfRange(n))
	}
	rem := r.Buffered()
	if n < rem {
		r.off += n
		return ready(n)
	}
	if n == rem {
		r.off = len(r.buf)
		return drained(r, n)
	}
	return deferred(r, func(ctx context.Context) (int, error) {
		return r.skipSlow(ctx, n)
	})
}

// TxtNum 读取n个字节并作为UTF-8字符串返回.
func (r *Reader) TxtNum(n int) Result[string] {
	r.checkIdle()
	if n < 0 {
		return failed[string](outOfRange(n))
	}
	buf, pos := r.buf, r.off
	rem := len(buf) - pos
	if n < rem {
		r.off = pos + n
		return ready(string(buf[pos : pos+n]))
	}
	if n == rem {
		r.off = len(buf)
		return drained(r, string(buf[pos:]))
	}
	if n > r.maxQueueLen {
		return failed[string](outOfRange(n))
	}
	return deferred(r, func(ctx context.Context) (string, error) {
		b, err := r.assemble(ctx, n)
		if err != nil {
			return "", err
		}
		return fasttypeconversion.Bytes2String(b), nil
	})
}

// assemble 将当前chunk的剩余部分和后续chunk拼接成n个字节.
// 调用前需保证n大于当前chunk的剩余长度.
//
//	|----------------------------------------------|
//	| *tail* | *chunks...* |       *chunk*         |
//	|<------- num -------->|<--- len(chunk) ------>|
//	|<------------ n -------------->|<-- exceed -->|
//	                       | *head* |
func (r *Reader) assemble(ctx context.Context, n int) ([]byte, error) {
	tail := r.buf[r.off:]
	num := len(tail)

	var out []byte
	for {
		chunk, err := r.pullChunk(ctx)
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			return nil, ErrNoMoreData
		}
		if out == nil {
			out = r.alloc(n)[:n]
			copy(out, tail)
		}
		end := num + len(chunk)
		exceed := end - n

		if exceed > 0 {
			head := len(chunk) - exceed
			copy(out[num:], chunk[:head])
			r.buf, r.off = chunk, head
			r.metrics.assembled(n)
			return out, nil
		}
		copy(out[num:], chunk)

		if exceed == 0 {
			r.buf, r.off = chunk, len(chunk)
			r.metrics.assembled(n)
			r.pullAhead(ctx)
			return out, nil
		}
		num = end
	}
}

func (r *Reader) skipSlow(ctx context.Context, n int) (int, error) {
	num := r.Buffered()
	for {
		chunk, err := r.pullChunk(ctx)
		if err != nil {
			return 0, err
		}
		if chunk == nil {
			return 0, ErrNoMoreData
		}
		end := num + len(chunk)
		exceed := end - n

		if exceed > 0 {
			r.buf, r.off = chunk, len(chunk)-exceed
			return n, nil
		}
		if exceed == 0 {
			r.buf, r.off = chunk, len(chunk)
			r.pullAhead(ctx)
			return n, nil
		}
		num = end
	}
}
