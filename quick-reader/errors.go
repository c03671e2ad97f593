package quickreader

import (
	"errors"
	"strconv"
)

// ErrorCode 读取错误的类型
type ErrorCode int

const (
	// NoMoreData 数据流在请求满足之前结束, Reader被关闭.
	NoMoreData ErrorCode = iota + 1
	// FailedToPull 数据源拉取chunk失败, Reader被关闭.
	FailedToPull
	// OutOfRange 请求的长度超过最大累积长度, Reader仍然可用.
	OutOfRange
	// MaxQueueExceeded 分隔符扫描累积的字节数超过最大累积长度, Reader被关闭.
	MaxQueueExceeded
)

func (c ErrorCode) String() string {
	switch c {
	case NoMoreData:
		return "NoMoreData"
	case FailedToPull:
		return "FailedToPull"
	case OutOfRange:
		return "OutOfRange"
	case MaxQueueExceeded:
		return "MaxQueueExceeded"
	}
	return "ErrorCode(" + strconv.Itoa(int(c)) + ")"
}

func (c ErrorCode) text() string {
	switch c {
	case NoMoreData:
		return "no more data"
	case FailedToPull:
		return "failed to pull"
	case OutOfRange:
		return "out of range"
	case MaxQueueExceeded:
		return "max queue length exceeded"
	}
	return c.String()
}

// Error Reader返回的错误.
// errors.Is按Code与ErrNoMoreData等哨兵错误比较.
type Error struct {
	Code   ErrorCode
	Detail string
	Err    error // FailedToPull时为数据源返回的原始错误
}

func (e *Error) Error() string {
	msg := "quickreader: " + e.Code.text()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNoMoreData       = &Error{Code: NoMoreData}
	ErrFailedToPull     = &Error{Code: FailedToPull}
	ErrOutOfRange       = &Error{Code: OutOfRange}
	ErrMaxQueueExceeded = &Error{Code: MaxQueueExceeded}
)

// IsFatal 判断err是否会导致Reader被关闭.
func IsFatal(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code != OutOfRange
}

func failedToPull(err error) *Error {
	return &Error{Code: FailedToPull, Detail: err.Error(), Err: err}
}

func outOfRange(n int) *Error {
	return &Error{Code: OutOfRange, Detail: strconv.Itoa(n)}
}

func maxQueueExceeded(limit int) *Error {
	return &Error{Code: MaxQueueExceeded, Detail: "limit " + strconv.Itoa(limit)}
}
