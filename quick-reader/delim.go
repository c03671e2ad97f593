package quickreader

import (
	"bytes"
	"context"

	bufferqueue "github.com/usherasnick/quick-reader/buffer-queue"
	fasttypeconversion "github.com/usherasnick/quick-reader/fast-type-conversion"
)

// BytesTo 读取delim之前的字节, delim被消费但不包含在结果中.
//
// 跨chunk扫描时, 累积超过最大累积长度仍未找到delim则返回MaxQueueExceeded并关闭Reader.
// 数据流结束仍未找到delim时, 若EOFAsDelim()为true则返回已累积的全部字节, 否则返回NoMoreData.
func (r *Reader) BytesTo(delim byte) Result[[]byte] {
	r.checkIdle()
	buf, pos := r.buf, r.off
	if i := bytes.IndexByte(buf[pos:], delim); i >= 0 {
		end := pos + i
		out := buf[pos:end:end]
		r.off = end + 1
		if r.off < len(buf) {
			return ready(out)
		}
		return drained(r, out)
	}
	return deferred(r, func(ctx context.Context) ([]byte, error) {
		return r.bytesToSlow(ctx, delim)
	})
}

// SkipTo 跳过delim及其之前的字节, 返回跳过的字节数 (包含delim).
// 与BytesTo逻辑相同, 但不分配也不拷贝内存.
func (r *Reader) SkipTo(delim byte) Result[int] {
	r.checkIdle()
	buf, pos := r.buf, r.off
	if i := bytes.IndexByte(buf[pos:], delim); i >= 0 {
		r.off = pos + i + 1
		if r.off < len(buf) {
			return ready(i + 1)
		}
		return drained(r, i+1)
	}
	return deferred(r, func(ctx context.Context) (int, error) {
		return r.skipToSlow(ctx, delim)
	})
}

// TxtTo 读取delim之前的字节并作为UTF-8字符串返回.
func (r *Reader) TxtTo(delim byte) Result[string] {
	r.checkIdle()
	buf, pos := r.buf, r.off
	if i := bytes.IndexByte(buf[pos:], delim); i >= 0 {
		out := string(buf[pos : pos+i])
		r.off = pos + i + 1
		if r.off < len(buf) {
			return ready(out)
		}
		return drained(r, out)
	}
	return deferred(r, func(ctx context.Context) (string, error) {
		b, err := r.bytesToSlow(ctx, delim)
		if err != nil {
			return "", err
		}
		return fasttypeconversion.Bytes2String(b), nil
	})
}

// Txt 读取'\0'之前的字符串, 等价于TxtTo(0).
func (r *Reader) Txt() Result[string] {
	return r.TxtTo(0)
}

// TxtLn 读取'\n'之前的字符串, 等价于TxtTo('\n').
func (r *Reader) TxtLn() Result[string] {
	return r.TxtTo('\n')
}

func (r *Reader) bytesToSlow(ctx context.Context, delim byte) ([]byte, error) {
	q := bufferqueue.NewFragmentQueue()
	q.Push(r.buf[r.off:])

	for {
		chunk, err := r.pullChunk(ctx)
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			if !r.eofAsDelim {
				return nil, ErrNoMoreData
			}
			return r.concat(q), nil
		}

		i := bytes.IndexByte(chunk, delim)
		if i < 0 {
			q.Push(chunk)
			if q.Size() > r.maxQueueLen {
				q.Reset()
				r.close("max queue length exceeded")
				return nil, maxQueueExceeded(r.maxQueueLen)
			}
			continue
		}
		q.Push(chunk[:i])
		out := r.concat(q)

		if i+1 < len(chunk) {
			r.buf, r.off = chunk, i+1
			return out, nil
		}
		// delim is the last byte of the chunk
		r.buf, r.off = chunk, len(chunk)
		r.pullAhead(ctx)
		return out, nil
	}
}

func (r *Reader) skipToSlow(ctx context.Context, delim byte) (int, error) {
	num := r.Buffered()
	for {
		chunk, err := r.pullChunk(ctx)
		if err != nil {
			return 0, err
		}
		if chunk == nil {
			if !r.eofAsDelim {
				return 0, ErrNoMoreData
			}
			return num, nil
		}

		i := bytes.IndexByte(chunk, delim)
		if i < 0 {
			num += len(chunk)
			continue
		}
		off := i + 1
		if off < len(chunk) {
			r.buf, r.off = chunk, off
			return num + off, nil
		}
		r.buf, r.off = chunk, len(chunk)
		r.pullAhead(ctx)
		return num + off, nil
	}
}

func (r *Reader) concat(q *bufferqueue.FragmentQueue) []byte {
	out := q.Concat(r.alloc)
	r.metrics.assembled(len(out))
	return out
}
