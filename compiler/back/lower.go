package back

import (
	"context"
	"fmt"

	"tlog.app/go/errors"

	"github.com/npuc/npuc/compiler/ir"
)

type (
	// Lowerer produces the hardware byte layout of one weight operand.
	// Lower must be deterministic for the same operand and backend configuration.
	Lowerer interface {
		Lower(ctx context.Context, op *ir.Operand) ([]byte, error)
	}

	LoweringError struct {
		ID      ir.OperandID
		Operand string
		Kind    error
		Details string
	}
)

var (
	ErrMissingData     = errors.New("missing data")
	ErrUnsupportedType = errors.New("unsupported element type")
	ErrSizeMismatch    = errors.New("size mismatch")
)

func newLoweringError(op *ir.Operand, kind error, details string, args ...any) *LoweringError {
	if len(args) != 0 {
		details = fmt.Sprintf(details, args...)
	}

	return &LoweringError{
		ID:      op.ID,
		Operand: op.Name,
		Kind:    kind,
		Details: details,
	}
}

func (e *LoweringError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("lower operand %d %q: %v", e.ID, e.Operand, e.Kind)
	}

	return fmt.Sprintf("lower operand %d %q: %v: %s", e.ID, e.Operand, e.Kind, e.Details)
}

func (e *LoweringError) Unwrap() error { return e.Kind }
