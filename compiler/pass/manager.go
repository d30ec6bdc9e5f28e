package pass

import (
	"context"

	"nikand.dev/go/heap"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/npuc/npuc/compiler/ir"
	"github.com/npuc/npuc/compiler/stat"
)

type (
	Manager struct {
		passes []Pass
		index  map[ID]int

		stats *stat.Registry
	}

	Option func(m *Manager)
)

var ErrReportedFailure = errors.New("reported failure")

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		index: make(map[ID]int),
	}

	for _, o := range opts {
		o(m)
	}

	return m
}

func WithStats(r *stat.Registry) Option {
	return func(m *Manager) {
		m.stats = r
	}
}

func (m *Manager) Add(p Pass) error {
	id := p.ID()

	if _, ok := m.index[id]; ok {
		return errors.New("pass %v: already registered", id)
	}

	m.index[id] = len(m.passes)
	m.passes = append(m.passes, p)

	return nil
}

func (m *Manager) Lookup(id ID) Pass {
	i, ok := m.index[id]
	if !ok {
		return nil
	}

	return m.passes[i]
}

// Schedule orders passes so that every pass follows the passes it requires.
// Independent passes keep registration order.
func (m *Manager) Schedule() ([]Pass, error) {
	wait := make([]int, len(m.passes))
	next := make([][]int, len(m.passes))

	for i, p := range m.passes {
		r, ok := p.(Requirer)
		if !ok {
			continue
		}

		for _, dep := range r.Requires() {
			j, ok := m.index[dep]
			if !ok {
				return nil, errors.New("pass %v: requires unregistered pass %v", p.ID(), dep)
			}

			wait[i]++
			next[j] = append(next[j], i)
		}
	}

	ready := heap.Heap[int]{Less: func(d []int, i, j int) bool { return d[i] < d[j] }}

	for i, w := range wait {
		if w == 0 {
			ready.Push(i)
		}
	}

	order := make([]Pass, 0, len(m.passes))

	for ready.Len() != 0 {
		i := ready.Pop()
		order = append(order, m.passes[i])

		for _, j := range next[i] {
			wait[j]--

			if wait[j] == 0 {
				ready.Push(j)
			}
		}
	}

	if len(order) != len(m.passes) {
		var stuck []ID

		for i, w := range wait {
			if w != 0 {
				stuck = append(stuck, m.passes[i].ID())
			}
		}

		return nil, errors.New("dependency cycle among passes %v", stuck)
	}

	return order, nil
}

// Run runs scheduled passes one by one and stops at the first failure.
func (m *Manager) Run(ctx context.Context, mod *ir.Module) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "pass manager", "module", mod.Name, "passes", len(m.passes))
	defer tr.Finish("err", &err)

	order, err := m.Schedule()
	if err != nil {
		return errors.Wrap(err, "schedule")
	}

	for _, p := range order {
		res, err := p.Run(ctx, mod)
		if err == nil && res.IsFailure() {
			err = ErrReportedFailure
		}

		if m.stats != nil {
			m.stats.Counter("pass."+string(p.ID())+".runs", 0, "pass invocations").Inc()
		}

		if err != nil {
			tr.Printw("pass failed", "pass", p.ID(), "result", res, "err", err)

			return &Error{Pass: p.ID(), Err: err}
		}

		tr.V("pass_result").Printw("pass done", "pass", p.ID(), "result", res)
	}

	return nil
}
