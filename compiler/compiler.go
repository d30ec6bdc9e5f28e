package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/npuc/npuc/compiler/back"
	"github.com/npuc/npuc/compiler/front"
	"github.com/npuc/npuc/compiler/ir"
	"github.com/npuc/npuc/compiler/pass"
	"github.com/npuc/npuc/compiler/stat"
	"github.com/npuc/npuc/compiler/weight"
)

type (
	Config struct {
		// Out is the weight artifact path.
		Out string

		// Align is used by the default backend.
		Align int

		// Backend overrides the default TG backend.
		Backend back.Lowerer

		Stats *stat.Registry
	}
)

func CompileFile(ctx context.Context, name string, cfg Config) (*ir.Module, *weight.Buffer, error) {
	m, err := front.ParseFile(ctx, name)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load module")
	}

	w, err := Compile(ctx, m, cfg)
	if err != nil {
		return m, nil, err
	}

	return m, w, nil
}

// Compile runs the backend pipeline on m and returns the generated weights.
func Compile(ctx context.Context, m *ir.Module, cfg Config) (w *weight.Buffer, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "module", m.Name, "out", cfg.Out)
	defer tr.Finish("err", &err)

	err = m.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "validate")
	}

	be := cfg.Backend
	if be == nil {
		be = back.New(back.WithAlign(cfg.Align))
	}

	gen := weight.NewGenPass(be, cfg.Out, weight.WithStats(cfg.Stats))

	pm := pass.NewManager(pass.WithStats(cfg.Stats))

	for _, p := range []pass.Pass{gen, weight.NewAssignPass(gen)} {
		err = pm.Add(p)
		if err != nil {
			return nil, errors.Wrap(err, "build pipeline")
		}
	}

	err = pm.Run(ctx, m)
	if err != nil {
		return nil, errors.Wrap(err, "run pipeline")
	}

	return gen.Weights(), nil
}
