package bufferqueue

import (
	"github.com/gammazero/deque"
)

// FragmentQueue 有序的字节片段队列 (非线程安全).
// 片段按写入顺序保存, 只在Concat时才拷贝成一整块连续内存.
type FragmentQueue struct {
	q    deque.Deque
	size int
}

// NewFragmentQueue 返回FragmentQueue实例.
func NewFragmentQueue() *FragmentQueue {
	return &FragmentQueue{}
}

// Push 将片段追加到队尾, 不拷贝片段内容.
func (q *FragmentQueue) Push(b []byte) {
	q.q.PushBack(b)
	q.size += len(b)
}

// Len 返回队列中的片段数量.
func (q *FragmentQueue) Len() int {
	return q.q.Len()
}

// Size 返回队列中所有片段的字节总数.
func (q *FragmentQueue) Size() int {
	return q.size
}

// Concat 按顺序拼接所有片段并清空队列.
// 目标内存由alloc分配, 长度恰好为Size().
func (q *FragmentQueue) Concat(alloc func(n int) []byte) []byte {
	ret := alloc(q.size)[:q.size]
	pos := 0
	for q.q.Len() > 0 {
		b := q.q.PopFront().([]byte)
		pos += copy(ret[pos:], b)
	}
	q.size = 0
	return ret
}

// Reset 丢弃所有片段.
func (q *FragmentQueue) Reset() {
	for q.q.Len() > 0 {
		q.q.PopFront()
	}
	q.size = 0
}
