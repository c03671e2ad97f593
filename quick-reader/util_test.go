package quickreader

import (
	"context"
	"errors"
	"io"
)

var ctx = context.Background()

type step struct {
	data []byte
	err  error
}

func chunk(b ...byte) step {
	return step{data: b}
}

func str(s string) step {
	return step{data: []byte(s)}
}

func fail(msg string) step {
	return step{err: errors.New(msg)}
}

// scriptedSource 按顺序返回预设的chunk或错误, 之后返回io.EOF.
type scriptedSource struct {
	steps []step
	pulls int
}

func (s *scriptedSource) Pull(_ context.Context) ([]byte, error) {
	s.pulls++
	if len(s.steps) == 0 {
		return nil, io.EOF
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	return st.data, st.err
}

func newReader(steps ...step) *Reader {
	return NewReader(&scriptedSource{steps: steps}, nil)
}

func newReaderCfg(cfg *Cfg, steps ...step) *Reader {
	return NewReader(&scriptedSource{steps: steps}, cfg)
}
