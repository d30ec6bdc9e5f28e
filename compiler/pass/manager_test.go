package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npuc/npuc/compiler/ir"
	"github.com/npuc/npuc/compiler/stat"
)

type testPass struct {
	id   ID
	deps []ID
	res  Result
	err  error

	log *[]ID
}

func (p *testPass) ID() ID { return p.id }

func (p *testPass) Requires() []ID { return p.deps }

func (p *testPass) Run(ctx context.Context, m *ir.Module) (Result, error) {
	*p.log = append(*p.log, p.id)

	return p.res, p.err
}

func ids(ps []Pass) (r []ID) {
	for _, p := range ps {
		r = append(r, p.ID())
	}

	return r
}

func TestScheduleKeepsRegistrationOrder(t *testing.T) {
	var log []ID

	m := NewManager()

	require.NoError(t, m.Add(&testPass{id: "a", log: &log}))
	require.NoError(t, m.Add(&testPass{id: "b", log: &log}))
	require.NoError(t, m.Add(&testPass{id: "c", log: &log}))

	order, err := m.Schedule()
	require.NoError(t, err)
	assert.Equal(t, []ID{"a", "b", "c"}, ids(order))
}

func TestScheduleRequires(t *testing.T) {
	var log []ID

	m := NewManager()

	require.NoError(t, m.Add(&testPass{id: "assign", deps: []ID{"gen"}, log: &log}))
	require.NoError(t, m.Add(&testPass{id: "lint", log: &log}))
	require.NoError(t, m.Add(&testPass{id: "gen", log: &log}))

	order, err := m.Schedule()
	require.NoError(t, err)
	assert.Equal(t, []ID{"lint", "gen", "assign"}, ids(order))

	err = m.Run(context.Background(), ir.NewModule("m"))
	require.NoError(t, err)
	assert.Equal(t, []ID{"lint", "gen", "assign"}, log)
}

func TestScheduleErrors(t *testing.T) {
	var log []ID

	m := NewManager()

	require.NoError(t, m.Add(&testPass{id: "a", deps: []ID{"missing"}, log: &log}))

	_, err := m.Schedule()
	assert.ErrorContains(t, err, "unregistered")

	m = NewManager()

	require.NoError(t, m.Add(&testPass{id: "a", deps: []ID{"b"}, log: &log}))
	require.NoError(t, m.Add(&testPass{id: "b", deps: []ID{"a"}, log: &log}))

	_, err = m.Schedule()
	assert.ErrorContains(t, err, "cycle")

	err = m.Run(context.Background(), ir.NewModule("m"))
	assert.Error(t, err)
	assert.Empty(t, log)
}

func TestDuplicateID(t *testing.T) {
	var log []ID

	m := NewManager()

	require.NoError(t, m.Add(&testPass{id: "a", log: &log}))
	assert.Error(t, m.Add(&testPass{id: "a", log: &log}))

	assert.NotNil(t, m.Lookup("a"))
	assert.Nil(t, m.Lookup("b"))
}

func TestRunAbortsOnFailure(t *testing.T) {
	var log []ID

	cause := errors.New("lowering failed")
	r := stat.New()

	m := NewManager(WithStats(r))

	require.NoError(t, m.Add(&testPass{id: "a", res: Changed, log: &log}))
	require.NoError(t, m.Add(&testPass{id: "b", res: Failure, err: cause, log: &log}))
	require.NoError(t, m.Add(&testPass{id: "c", log: &log}))

	err := m.Run(context.Background(), ir.NewModule("m"))

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ID("b"), perr.Pass)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, []ID{"a", "b"}, log)

	assert.Equal(t, 1, r.Lookup("pass.a.runs").Value())
	assert.Equal(t, 1, r.Lookup("pass.b.runs").Value())
	assert.False(t, r.Lookup("pass.c.runs").Valid())
}

func TestRunFailureWithoutError(t *testing.T) {
	var log []ID

	m := NewManager()

	require.NoError(t, m.Add(&testPass{id: "a", res: Failure, log: &log}))
	require.NoError(t, m.Add(&testPass{id: "b", log: &log}))

	err := m.Run(context.Background(), ir.NewModule("m"))
	assert.ErrorIs(t, err, ErrReportedFailure)
	assert.Equal(t, []ID{"a"}, log)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "unchanged", Unchanged.String())
	assert.Equal(t, "changed", Changed.String())
	assert.Equal(t, "failure", Failure.String())
	assert.Equal(t, "Result(9)", Result(9).String())
	assert.True(t, Failure.IsFailure())
	assert.False(t, Changed.IsFailure())
}
