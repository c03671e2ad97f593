package quickreader

import (
	"errors"
	"testing"
	"testing/quick"
)

type outcome struct {
	val  interface{}
	code ErrorCode
	eof  bool
}

func run(r *Reader, op uint8) outcome {
	arg := int(op/6) % 9
	var (
		val interface{}
		err error
	)
	switch op % 6 {
	case 0:
		var b []byte
		b, err = r.Bytes(arg).Get(ctx)
		val = string(b)
	case 1:
		var b []byte
		b, err = r.BytesTo(byte(arg)).Get(ctx)
		val = string(b)
	case 2:
		val, err = r.U32BE().Get(ctx)
	case 3:
		val, err = r.Skip(arg).Get(ctx)
	case 4:
		val, err = r.SkipTo(byte(arg)).Get(ctx)
	case 5:
		val, err = r.I64().Get(ctx)
	}
	o := outcome{val: val, eof: r.EOF()}
	var e *Error
	if errors.As(err, &e) {
		o.code = e.Code
	}
	return o
}

func split(data []byte, cuts []uint8) [][]byte {
	var chunks [][]byte
	for _, c := range cuts {
		n := int(c % 7)
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return append(chunks, data)
}

func TestChunkBoundariesDoNotChangeResults(t *testing.T) {
	f := func(data []byte, cuts []uint8, script []uint8) bool {
		cfg := &Cfg{EOFAsDelim: len(script)%2 == 0}
		whole := NewReader(FromChunks(data), cfg)
		pieces := NewReader(FromChunks(split(data, cuts)...), cfg)

		for _, op := range script {
			a, b := run(whole, op), run(pieces, op)
			if a != b {
				t.Logf("op %d: whole %+v, pieces %+v", op, a, b)
				return false
			}
			if a.code != 0 && a.code != OutOfRange {
				break
			}
		}
		return true
	}

	if err := quick.Check(f, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
}
