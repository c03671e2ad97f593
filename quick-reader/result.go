package quickreader

import (
	"context"
)

// Result 读操作的返回值.
// 数据已在当前chunk中时Ready()为true, 直接通过Value()/Err()取结果;
// 否则需要先调用Pending().Wait(ctx)从数据源拉取数据, 在此之前不能再发起其他读操作.
//
//	id, err := r.U32().Get(ctx)
type Result[T any] struct {
	val  T
	err  error
	pend *Pending[T]
}

// Ready 判断结果是否已经可用.
func (res Result[T]) Ready() bool {
	return res.pend == nil
}

// Value 返回已可用的结果值.
func (res Result[T]) Value() T {
	return res.val
}

// Err 返回已可用的错误.
func (res Result[T]) Err() error {
	return res.err
}

// Pending 返回待完成的读操作, Ready()为true时返回nil.
func (res Result[T]) Pending() *Pending[T] {
	return res.pend
}

// Get 返回结果, 必要时等待待完成的读操作.
func (res Result[T]) Get(ctx context.Context) (T, error) {
	if res.pend != nil {
		return res.pend.Wait(ctx)
	}
	return res.val, res.err
}

// Pending 待完成的读操作. 同一个Reader同时最多只有一个.
type Pending[T any] struct {
	r    *Reader
	fn   func(ctx context.Context) (T, error)
	done bool
	val  T
	err  error
}

// Wait 在当前goroutine中完成读操作, 重复调用返回同一结果.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	if !p.done {
		p.val, p.err = p.fn(ctx)
		p.done = true
		p.fn = nil
		p.r.busy = false
	}
	return p.val, p.err
}

func ready[T any](v T) Result[T] {
	return Result[T]{val: v}
}

func failed[T any](err error) Result[T] {
	return Result[T]{err: err}
}

func deferred[T any](r *Reader, fn func(ctx context.Context) (T, error)) Result[T] {
	r.busy = true
	return Result[T]{pend: &Pending[T]{r: r, fn: fn}}
}

// drained 用于刚好读完当前chunk的情况: 结果已知, 等待时预取下一个chunk.
func drained[T any](r *Reader, v T) Result[T] {
	return deferred(r, func(ctx context.Context) (T, error) {
		r.pullAhead(ctx)
		return v, nil
	})
}
