package fwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SafeWriter 原子地生成输出文件: 先写临时文件, Commit时再重命名为目标文件.
// 写入期间持有目标文件的文件锁, 同一时刻只有一个写者.
type SafeWriter struct {
	flock *FLock
	f     *os.File
	fn    string
	tmp   string
}

// NewSafeWriter 新建SafeWriter对象.
func NewSafeWriter(fn string) (*SafeWriter, error) {
	if err := os.MkdirAll(filepath.Dir(fn), 0750); err != nil {
		return nil, errors.Wrapf(err, "mkdir for %s", fn)
	}

	flock := NewFLock(fn)
	if err := flock.Acquire(); err != nil {
		return nil, err
	}

	tmp := fmt.Sprintf("%s.tmp%v", fn, time.Now().UnixNano())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		flock.Release()
		return nil, errors.Wrapf(err, "create %s", tmp)
	}

	return &SafeWriter{flock: flock, f: f, fn: fn, tmp: tmp}, nil
}

// Write 写入临时文件.
func (w *SafeWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

// Commit 落盘并重命名为目标文件.
func (w *SafeWriter) Commit() error {
	defer w.exit()
	if err := w.f.Sync(); err != nil {
		return errors.Wrapf(err, "sync %s", w.tmp)
	}
	if err := os.Rename(w.tmp, w.fn); err != nil {
		return errors.Wrapf(err, "rename to %s", w.fn)
	}
	log.Debug().Str("file", w.fn).Msg("output committed")
	return nil
}

// Abort 放弃写入, 目标文件保持不变.
func (w *SafeWriter) Abort() {
	w.exit()
}

func (w *SafeWriter) exit() {
	w.f.Close()      // nolint
	os.Remove(w.tmp) // nolint
	w.flock.Release()
}
