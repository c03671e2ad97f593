package fwriter

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// ErrLocked 目标文件正在被其他进程写入.
var ErrLocked = errors.New("file has been locked by another writer")

// FLock 基于flock的非阻塞文件锁, 锁文件为<fn>.lock.
type FLock struct {
	fn string
	fd int
}

// NewFLock 新建FLock对象.
func NewFLock(fn string) *FLock {
	return &FLock{fn: fn + ".lock", fd: -1}
}

// Acquire 获取文件锁, 已被占用时返回ErrLocked.
func (l *FLock) Acquire() error {
	fd, err := syscall.Open(l.fn, syscall.O_CREAT|syscall.O_RDONLY, 0600)
	if err != nil {
		return errors.Wrapf(err, "open %s", l.fn)
	}
	if err = syscall.Flock(fd, syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		syscall.Close(fd) // nolint
		if err == syscall.EWOULDBLOCK {
			return ErrLocked
		}
		return errors.Wrapf(err, "flock %s", l.fn)
	}
	l.fd = fd
	return nil
}

// Release 释放文件锁并删除锁文件.
func (l *FLock) Release() {
	if l.fd < 0 {
		return
	}
	os.Remove(l.fn)     // nolint
	syscall.Close(l.fd) // nolint
	l.fd = -1
}
