package weight

import (
	"github.com/npuc/npuc/compiler/ir"
	"github.com/npuc/npuc/compiler/set"
)

// Tracker remembers which operands are already in the buffer.
// It is keyed by operand identity, not by content.
type Tracker struct {
	done set.Bits[ir.OperandID]
}

func NewTracker() *Tracker {
	return &Tracker{
		done: set.MakeBits[ir.OperandID](0),
	}
}

func (t *Tracker) IsWritten(id ir.OperandID) bool {
	return t.done.IsSet(id)
}

func (t *Tracker) MarkWritten(id ir.OperandID) {
	t.done.Set(id)
}

func (t *Tracker) Len() int {
	return t.done.Size()
}

func (t *Tracker) TlogAppend(b []byte) []byte {
	return t.done.TlogAppend(b)
}
