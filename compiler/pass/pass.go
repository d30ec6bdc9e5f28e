// Package pass defines the compiler pass contract and the pass manager.
//
// A pass is registered under a static ID when the pipeline is built.
// Run reports one of three results: Changed and Unchanged continue the
// pipeline, Failure aborts it. A pass that fails returns the cause as error.
package pass

import (
	"context"
	"fmt"

	"github.com/npuc/npuc/compiler/ir"
)

type (
	ID string

	Result int

	Pass interface {
		ID() ID
		Run(ctx context.Context, m *ir.Module) (Result, error)
	}

	// Requirer is implemented by passes which must run after other passes.
	Requirer interface {
		Requires() []ID
	}

	// Error is returned by Manager.Run for the pass which failed.
	Error struct {
		Pass ID
		Err  error
	}
)

const (
	Unchanged Result = iota
	Changed
	Failure
)

func (r Result) IsFailure() bool { return r == Failure }

func (r Result) String() string {
	switch r {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	case Failure:
		return "failure"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("pass %v: %v", e.Pass, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
