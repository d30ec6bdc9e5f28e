package ir

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog/tlwire"
)

type (
	// OperandID is the slot of an operand in its Module arena.
	// It is the operand identity: two ids are the same operand
	// if and only if they are equal.
	OperandID int

	Kind int

	Operand struct {
		ID   OperandID
		Name string
		Kind Kind

		DType DType
		Shape []int

		// Data is raw little-endian element storage.
		Data []byte `tlog:"-"`

		// Addr is the offset in the weight segment, NoAddr until placed.
		Addr int64
	}

	Inst struct {
		Op    string
		Opnds []OperandID
	}

	Module struct {
		Name string

		Operands []*Operand
		Insts    []*Inst
	}

	IdentityViolation struct {
		ID    OperandID
		Found OperandID

		PC loc.PC
	}
)

const (
	Input Kind = iota
	Output
	Temp
	Weight
	Const
)

const (
	NoOperand OperandID = -1
	NoAddr    int64     = -1
)

var kindNames = []string{
	Input:  "input",
	Output: "output",
	Temp:   "temp",
	Weight: "weight",
	Const:  "const",
}

func NewModule(name string) *Module {
	return &Module{Name: name}
}

// AddOperand issues the next arena slot for op and stamps its ID.
// The module takes ownership of op.
func (m *Module) AddOperand(op *Operand) OperandID {
	id := OperandID(len(m.Operands))

	op.ID = id
	op.Addr = NoAddr

	m.Operands = append(m.Operands, op)

	return id
}

func (m *Module) AddInst(op string, opnds ...OperandID) *Inst {
	in := &Inst{
		Op:    op,
		Opnds: opnds,
	}

	m.Insts = append(m.Insts, in)

	return in
}

// Lookup resolves id to its operand.
// It reports IdentityViolation if the slot is missing or holds another identity.
func (m *Module) Lookup(id OperandID) (*Operand, error) {
	if id < 0 || int(id) >= len(m.Operands) || m.Operands[id] == nil {
		return nil, &IdentityViolation{ID: id, Found: NoOperand, PC: loc.Caller(1)}
	}

	op := m.Operands[id]
	if op.ID != id {
		return nil, &IdentityViolation{ID: id, Found: op.ID, PC: loc.Caller(1)}
	}

	return op, nil
}

func (m *Module) Validate() error {
	for i, in := range m.Insts {
		for pos, id := range in.Opnds {
			if _, err := m.Lookup(id); err != nil {
				return errors.Wrap(err, "inst %d (%v) operand %d", i, in.Op, pos)
			}
		}
	}

	return nil
}

func (op *Operand) IsWeight() bool {
	return op.Kind == Weight || op.Kind == Const
}

func (op *Operand) NumElements() int {
	n := 1

	for _, d := range op.Shape {
		n *= d
	}

	return n
}

// Size is the byte size declared by DType and Shape.
func (op *Operand) Size() int {
	return op.NumElements() * op.DType.Size()
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	for k, n := range kindNames {
		if n == s {
			return Kind(k), nil
		}
	}

	return 0, errors.New("unknown operand kind: %q", s)
}

func (e *IdentityViolation) Error() string {
	if e.Found == NoOperand {
		return fmt.Sprintf("identity violation: operand %d has no slot (at %v)", e.ID, e.PC)
	}

	return fmt.Sprintf("identity violation: operand %d resolved to slot stamped %d (at %v)", e.ID, e.Found, e.PC)
}

func (id OperandID) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendInt(b, int(id))
}
