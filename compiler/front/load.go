package front

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/npuc/npuc/compiler/ir"
)

type (
	fileModule struct {
		Name     string        `yaml:"name"`
		Operands []fileOperand `yaml:"operands"`
		Insts    []fileInst    `yaml:"insts"`
	}

	fileOperand struct {
		Name  string  `yaml:"name"`
		Kind  string  `yaml:"kind"`
		DType string  `yaml:"dtype"`
		Shape []int   `yaml:"shape"`
		Data  []int64 `yaml:"data"`
	}

	fileInst struct {
		Op       string   `yaml:"op"`
		Operands []string `yaml:"operands"`
	}
)

var ErrEmpty = errors.New("empty module description")

func ParseFile(ctx context.Context, name string) (*ir.Module, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Parse(ctx, name, text)
}

// Parse builds a module from its YAML description.
// Instructions name their operands, which must be declared in operands.
func Parse(ctx context.Context, name string, text []byte) (m *ir.Module, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "front: parse module", "file", name)
	defer tr.Finish("err", &err)

	var f fileModule

	dec := yaml.NewDecoder(bytes.NewReader(text))
	dec.KnownFields(true)

	err = dec.Decode(&f)
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	if f.Name == "" {
		f.Name = name
	}

	m = ir.NewModule(f.Name)
	syms := make(map[string]ir.OperandID, len(f.Operands))

	for i, x := range f.Operands {
		if x.Name == "" {
			return nil, errors.New("operand %d: no name", i)
		}

		if _, ok := syms[x.Name]; ok {
			return nil, errors.New("operand %v: redeclared", x.Name)
		}

		op, err := operand(x)
		if err != nil {
			return nil, errors.Wrap(err, "operand %v", x.Name)
		}

		syms[x.Name] = m.AddOperand(op)
	}

	for i, x := range f.Insts {
		opnds := make([]ir.OperandID, len(x.Operands))

		for j, n := range x.Operands {
			id, ok := syms[n]
			if !ok {
				return nil, errors.New("inst %d (%v): undeclared operand %v", i, x.Op, n)
			}

			opnds[j] = id
		}

		m.AddInst(x.Op, opnds...)
	}

	tr.Printw("module", "name", m.Name, "operands", len(m.Operands), "insts", len(m.Insts))

	return m, nil
}

func operand(x fileOperand) (op *ir.Operand, err error) {
	op = &ir.Operand{
		Name:  x.Name,
		Shape: x.Shape,
	}

	op.Kind, err = ir.ParseKind(x.Kind)
	if err != nil {
		return nil, err
	}

	op.DType, err = ir.ParseDType(x.DType)
	if err != nil {
		return nil, err
	}

	for _, d := range x.Shape {
		if d < 0 {
			return nil, errors.New("negative dimension in shape %v", x.Shape)
		}
	}

	if x.Data == nil {
		return op, nil
	}

	op.Data = make([]byte, 0, len(x.Data)*op.DType.Size())

	for i, v := range x.Data {
		op.Data, err = appendElem(op.Data, op.DType, v)
		if err != nil {
			return nil, errors.Wrap(err, "data[%d]", i)
		}
	}

	return op, nil
}

func appendElem(b []byte, t ir.DType, v int64) ([]byte, error) {
	switch t {
	case ir.Int8:
		if v < math.MinInt8 || v > math.MaxInt8 {
			return nil, errors.New("%d overflows %v", v, t)
		}

		return append(b, byte(int8(v))), nil
	case ir.Uint8:
		if v < 0 || v > math.MaxUint8 {
			return nil, errors.New("%d overflows %v", v, t)
		}

		return append(b, byte(v)), nil
	case ir.Int16:
		if v < math.MinInt16 || v > math.MaxInt16 {
			return nil, errors.New("%d overflows %v", v, t)
		}

		return binary.LittleEndian.AppendUint16(b, uint16(int16(v))), nil
	case ir.Int32:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, errors.New("%d overflows %v", v, t)
		}

		return binary.LittleEndian.AppendUint32(b, uint32(int32(v))), nil
	case ir.Float32:
		return binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(v))), nil
	default:
		return nil, errors.New("unsupported dtype %v", t)
	}
}
