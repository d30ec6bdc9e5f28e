package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOperandIssuesSlots(t *testing.T) {
	m := NewModule("m")

	w := m.AddOperand(&Operand{Name: "w", Kind: Weight, DType: Int8, Shape: []int{2, 2}})
	x := m.AddOperand(&Operand{Name: "x", Kind: Input, DType: Int8, Shape: []int{4}})

	assert.Equal(t, OperandID(0), w)
	assert.Equal(t, OperandID(1), x)

	op, err := m.Lookup(w)
	require.NoError(t, err)
	assert.Equal(t, "w", op.Name)
	assert.Equal(t, NoAddr, op.Addr)
	assert.True(t, op.IsWeight())
	assert.Equal(t, 4, op.NumElements())
	assert.Equal(t, 4, op.Size())

	op, err = m.Lookup(x)
	require.NoError(t, err)
	assert.False(t, op.IsWeight())
}

func TestLookupIdentityViolation(t *testing.T) {
	m := NewModule("m")

	w := m.AddOperand(&Operand{Name: "w", Kind: Weight})
	m.AddOperand(&Operand{Name: "b", Kind: Const})

	_, err := m.Lookup(5)
	var iv *IdentityViolation
	require.ErrorAs(t, err, &iv)
	assert.Equal(t, OperandID(5), iv.ID)
	assert.Equal(t, NoOperand, iv.Found)

	m.Operands[w].ID = 1

	_, err = m.Lookup(w)
	require.ErrorAs(t, err, &iv)
	assert.Equal(t, OperandID(1), iv.Found)
	assert.Contains(t, err.Error(), "identity violation")
}

func TestValidate(t *testing.T) {
	m := NewModule("m")

	w := m.AddOperand(&Operand{Name: "w", Kind: Weight})
	m.AddInst("conv", w)

	require.NoError(t, m.Validate())

	m.AddInst("conv", w, 7)

	err := m.Validate()
	var iv *IdentityViolation
	require.ErrorAs(t, err, &iv)
	assert.Contains(t, err.Error(), "inst 1 (conv) operand 1")
}

func TestScalarShape(t *testing.T) {
	op := &Operand{DType: Int16}

	assert.Equal(t, 1, op.NumElements())
	assert.Equal(t, 2, op.Size())
}

func TestKindAndDType(t *testing.T) {
	for _, n := range []string{"input", "output", "temp", "weight", "const"} {
		k, err := ParseKind(n)
		require.NoError(t, err)
		assert.Equal(t, n, k.String())
	}

	_, err := ParseKind("bogus")
	assert.Error(t, err)

	for _, tc := range []struct {
		name string
		size int
	}{
		{"int8", 1},
		{"uint8", 1},
		{"int16", 2},
		{"int32", 4},
		{"float32", 4},
	} {
		dt, err := ParseDType(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.size, dt.Size(), tc.name)
		assert.Equal(t, tc.name, dt.String())
	}

	_, err = ParseDType("invalid")
	assert.Error(t, err)

	assert.Equal(t, 0, Invalid.Size())
	assert.Equal(t, "unknown", DType(42).String())
}
