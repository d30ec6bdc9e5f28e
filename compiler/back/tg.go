package back

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/npuc/npuc/compiler/ir"
)

type (
	// TG lowers weights for the tensor-generation accelerator family.
	// Bytes are 8-bit quantized values; 16-bit values are stored planar,
	// all low bytes first and then all high bytes.
	TG struct {
		Align int
	}

	TGOption func(b *TG)
)

func New(opts ...TGOption) *TG {
	b := &TG{Align: 1}

	for _, o := range opts {
		o(b)
	}

	return b
}

func WithAlign(n int) TGOption {
	return func(b *TG) {
		if n < 1 {
			n = 1
		}

		b.Align = n
	}
}

func (b *TG) Lower(ctx context.Context, op *ir.Operand) (res []byte, err error) {
	if len(op.Data) == 0 {
		return nil, newLoweringError(op, ErrMissingData, "")
	}

	switch op.DType {
	case ir.Int8, ir.Uint8, ir.Int16:
	default:
		return nil, newLoweringError(op, ErrUnsupportedType, "%v", op.DType)
	}

	if size := op.Size(); size != len(op.Data) {
		return nil, newLoweringError(op, ErrSizeMismatch, "declared %d bytes (%v%v), stored %d", size, op.DType, op.Shape, len(op.Data))
	}

	if op.DType == ir.Int16 {
		res = planar16(res, op.Data)
	} else {
		res = append(res, op.Data...)
	}

	res = b.pad(res)

	tlog.SpanFromContext(ctx).V("tg_lower").Printw("lowered", "operand", op.ID, "name", op.Name, "dtype", op.DType, "size", len(res))

	return res, nil
}

func (b *TG) pad(res []byte) []byte {
	if b.Align <= 1 {
		return res
	}

	for len(res)%b.Align != 0 {
		res = append(res, 0)
	}

	return res
}

func planar16(b, data []byte) []byte {
	n := len(data) / 2

	for i := 0; i < n; i++ {
		b = append(b, data[2*i])
	}

	for i := 0; i < n; i++ {
		b = append(b, data[2*i+1])
	}

	return b
}
