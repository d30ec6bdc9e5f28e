package weight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npuc/npuc/compiler/ir"
)

func TestTracker(t *testing.T) {
	tr := NewTracker()

	assert.False(t, tr.IsWritten(0))
	assert.False(t, tr.IsWritten(130))

	tr.MarkWritten(130)
	tr.MarkWritten(130)
	tr.MarkWritten(2)

	assert.True(t, tr.IsWritten(130))
	assert.True(t, tr.IsWritten(2))
	assert.False(t, tr.IsWritten(3))
	assert.Equal(t, 2, tr.Len())

	assert.False(t, NewTracker().IsWritten(2), "trackers share no state")
}

func TestBufferAppend(t *testing.T) {
	w := NewBuffer()

	e, err := w.Append(5, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, Entry{Operand: 5, Offset: 0, Size: 3}, e)

	e, err = w.Append(1, nil)
	require.NoError(t, err)
	assert.Equal(t, Entry{Operand: 1, Offset: 3, Size: 0}, e)

	e, err = w.Append(2, []byte{4})
	require.NoError(t, err)
	assert.Equal(t, int64(3), e.Offset)

	_, err = w.Append(5, []byte{9})
	assert.ErrorIs(t, err, ErrRewrite)

	assert.Equal(t, []byte{1, 2, 3, 4}, w.Bytes())
	assert.Equal(t, 4, w.Len())
	assert.Len(t, w.Entries(), 3)

	_, ok := w.Entry(ir.OperandID(9))
	assert.False(t, ok)
}
