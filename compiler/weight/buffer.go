package weight

import (
	"bytes"
	"io"

	"github.com/natefinch/atomic"
	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"

	"github.com/npuc/npuc/compiler/ir"
)

type (
	// Buffer is the weight segment being built.
	// Each operand owns one contiguous range, in first-write order.
	Buffer struct {
		b []byte

		entries []Entry
		index   map[ir.OperandID]int
	}

	Entry struct {
		Operand ir.OperandID
		Offset  int64
		Size    int64
	}

	IOError struct {
		Path string
		Err  error
	}
)

var ErrRewrite = errors.New("operand already written")

func NewBuffer() *Buffer {
	return &Buffer{
		index: make(map[ir.OperandID]int),
	}
}

// Append places data at the end of the buffer as the range of operand id.
func (w *Buffer) Append(id ir.OperandID, data []byte) (Entry, error) {
	if _, ok := w.index[id]; ok {
		return Entry{}, errors.Wrap(ErrRewrite, "operand %d", id)
	}

	e := Entry{
		Operand: id,
		Offset:  int64(len(w.b)),
		Size:    int64(len(data)),
	}

	w.b = append(w.b, data...)

	w.index[id] = len(w.entries)
	w.entries = append(w.entries, e)

	return e, nil
}

func (w *Buffer) Bytes() []byte { return w.b }

func (w *Buffer) Len() int { return len(w.b) }

func (w *Buffer) Entries() []Entry { return w.entries }

func (w *Buffer) Entry(id ir.OperandID) (Entry, bool) {
	i, ok := w.index[id]
	if !ok {
		return Entry{}, false
	}

	return w.entries[i], true
}

// WriteTo writes raw buffer bytes: no header and no framing.
func (w *Buffer) WriteTo(wr io.Writer) (int64, error) {
	n, err := wr.Write(w.b)

	return int64(n), err
}

// Commit replaces path with the buffer contents.
// The file is written aside and renamed into place, so path either keeps
// its previous state or holds the complete buffer.
func (w *Buffer) Commit(path string) error {
	err := atomic.WriteFile(path, bytes.NewReader(w.b))
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	return nil
}

func (e *IOError) Error() string {
	return "write " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

func (e Entry) End() int64 { return e.Offset + e.Size }

func (e Entry) TlogAppend(b []byte) []byte {
	var enc tlwire.Encoder

	b = enc.AppendMap(b, 3)
	b = enc.AppendKeyInt64(b, "id", int64(e.Operand))
	b = enc.AppendKeyInt64(b, "off", e.Offset)
	b = enc.AppendKeyInt64(b, "size", e.Size)

	return b
}
