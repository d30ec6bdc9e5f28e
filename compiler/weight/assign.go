package weight

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/npuc/npuc/compiler/ir"
	"github.com/npuc/npuc/compiler/pass"
)

// AssignPass places weight operands at the offsets GenPass wrote them to.
type AssignPass struct {
	gen *GenPass
}

const AssignPassID pass.ID = "assign-weight-offset"

func NewAssignPass(gen *GenPass) *AssignPass {
	return &AssignPass{gen: gen}
}

func (p *AssignPass) ID() pass.ID { return AssignPassID }

func (p *AssignPass) Requires() []pass.ID { return []pass.ID{GenPassID} }

func (p *AssignPass) Run(ctx context.Context, m *ir.Module) (_ pass.Result, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "assign weight offsets", "module", m.Name)
	defer tr.Finish("err", &err)

	w := p.gen.Weights()
	if w == nil {
		return pass.Failure, errors.New("no weights generated")
	}

	res := pass.Unchanged

	for _, e := range w.Entries() {
		op, err := m.Lookup(e.Operand)
		if err != nil {
			return pass.Failure, errors.Wrap(err, "entry at %#x", e.Offset)
		}

		if op.Addr == e.Offset {
			continue
		}

		op.Addr = e.Offset
		res = pass.Changed
	}

	tr.Printw("offsets assigned", "operands", len(w.Entries()), "result", res)

	return res, nil
}
