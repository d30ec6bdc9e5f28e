package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/npuc/npuc/compiler/ir"
	"github.com/npuc/npuc/compiler/weight"
)

type (
	// Listing is a weight buffer together with the module it was generated for.
	Listing struct {
		Module  *ir.Module
		Weights *weight.Buffer
	}
)

const HexWidth = 16

func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	switch x := x.(type) {
	case Listing:
		return Map(b, x.Module, x.Weights)
	case []byte:
		return Hex(b, x), nil
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

// Map renders one line per weight range: offset, size, operand.
func Map(b []byte, m *ir.Module, w *weight.Buffer) (_ []byte, err error) {
	b = app(b, 0, "# module %v: %d weights, %d bytes\n", m.Name, len(w.Entries()), w.Len())

	for _, e := range w.Entries() {
		op, err := m.Lookup(e.Operand)
		if err != nil {
			return nil, errors.Wrap(err, "entry at %#x", e.Offset)
		}

		b = app(b, 0, "0x%08x %d\t%v\t%v%v\n", e.Offset, e.Size, op.Name, op.DType, op.Shape)
	}

	return b, nil
}

func Hex(b, data []byte) []byte {
	for st := 0; st < len(data); st += HexWidth {
		end := st + HexWidth
		if end > len(data) {
			end = len(data)
		}

		b = app(b, 0, "%08x ", st)

		for _, c := range data[st:end] {
			b = app(b, 0, " %02x", c)
		}

		b = append(b, '\n')
	}

	return b
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
