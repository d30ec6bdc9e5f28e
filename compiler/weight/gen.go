package weight

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/npuc/npuc/compiler/back"
	"github.com/npuc/npuc/compiler/ir"
	"github.com/npuc/npuc/compiler/pass"
	"github.com/npuc/npuc/compiler/stat"
)

type (
	// GenPass lowers every weight operand of a module exactly once,
	// in instruction order, and writes the result to the output file.
	GenPass struct {
		backend back.Lowerer
		out     string

		stats *stat.Registry

		weights *Buffer
	}

	GenOption func(p *GenPass)
)

const GenPassID pass.ID = "gen-weight"

const (
	CounterBytes    = "weight.bytes"
	CounterOperands = "weight.operands"
	CounterDedup    = "weight.dedup"
)

func NewGenPass(be back.Lowerer, out string, opts ...GenOption) *GenPass {
	p := &GenPass{
		backend: be,
		out:     out,
	}

	for _, o := range opts {
		o(p)
	}

	return p
}

func WithStats(r *stat.Registry) GenOption {
	return func(p *GenPass) {
		p.stats = r
	}
}

func (p *GenPass) ID() pass.ID { return GenPassID }

// Weights returns the buffer of the last successful run.
func (p *GenPass) Weights() *Buffer { return p.weights }

// Run never modifies the module.
func (p *GenPass) Run(ctx context.Context, m *ir.Module) (_ pass.Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "gen weight", "module", m.Name, "out", p.out)
	defer tr.Finish("err", &err)

	p.weights = nil

	w, dedup, err := p.fill(ctx, m)
	if err != nil {
		return pass.Failure, errors.Wrap(err, "fill weight")
	}

	err = w.Commit(p.out)
	if err != nil {
		return pass.Failure, errors.Wrap(err, "commit")
	}

	p.weights = w

	if p.stats != nil {
		p.stats.Counter(CounterBytes, 0, "weight bytes emitted").Add(w.Len())
		p.stats.Counter(CounterOperands, 0, "unique weight operands written").Add(len(w.Entries()))
		p.stats.Counter(CounterDedup, 0, "weight references already written").Add(dedup)
	}

	tr.Printw("weights written", "size", w.Len(), "operands", len(w.Entries()), "dedup", dedup)

	return pass.Unchanged, nil
}

// Fill lowers the module weights into a new buffer without writing it anywhere.
func (p *GenPass) Fill(ctx context.Context, m *ir.Module) (*Buffer, error) {
	w, _, err := p.fill(ctx, m)

	return w, err
}

func (p *GenPass) fill(ctx context.Context, m *ir.Module) (w *Buffer, dedup int, err error) {
	tr := tlog.SpanFromContext(ctx)

	done := NewTracker()
	w = NewBuffer()

	for i, in := range m.Insts {
		for pos, id := range in.Opnds {
			op, err := m.Lookup(id)
			if err != nil {
				return nil, 0, errors.Wrap(err, "inst %d (%v) operand %d", i, in.Op, pos)
			}

			if !op.IsWeight() {
				continue
			}

			if done.IsWritten(id) {
				dedup++
				continue
			}

			data, err := p.backend.Lower(ctx, op)
			if err != nil {
				return nil, 0, errors.Wrap(err, "inst %d (%v)", i, in.Op)
			}

			if op.ID != id {
				return nil, 0, &ir.IdentityViolation{ID: id, Found: op.ID, PC: loc.Caller(0)}
			}

			e, err := w.Append(id, data)
			if err != nil {
				return nil, 0, errors.Wrap(err, "inst %d (%v)", i, in.Op)
			}

			done.MarkWritten(id)

			tr.V("weight_op").Printw("weight", "inst", i, "op", in.Op, "name", op.Name, "entry", e)
		}
	}

	if tr.If("dump_weights") {
		tr.Printw("written operands", "done", done, "entries", w.Entries())
	}

	return w, dedup, nil
}
