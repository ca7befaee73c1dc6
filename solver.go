package lhopital

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
)

// Epsilon is the absolute tolerance shared by the 0/0 check and the
// division-by-zero check. Values within Epsilon of zero by cancellation
// error are treated identically to exact zero.
const Epsilon = 1e-9

var (
	// ErrDivisionByZero reports that the denominator evaluates to zero
	// while the numerator does not; the limit is undefined.
	ErrDivisionByZero = errors.New("limit results in division by zero")
	// ErrMaxIterations reports that repeated differentiation did not
	// reach a determinate form within the iteration budget.
	ErrMaxIterations = errors.New("exceeded max iterations, could not find a determinate form")
	// ErrUnsupportedRule reports a differentiation step on a node shape
	// outside the implemented rule set.
	ErrUnsupportedRule = errors.New("differentiation rule not implemented")
)

// Step is a read-only snapshot of the solver's working state, reported
// once per iteration before classification.
type Step struct {
	Iteration   int
	Numerator   Expr
	Denominator Expr
	NumValue    float64
	DenValue    float64
}

// Observer receives each Step for external logging. It must not retain or
// rely on mutating the trees it is handed.
type Observer func(Step)

// Solver resolves limits of numerator/denominator pairs by repeated
// differentiation. The zero configuration logs nowhere and reports to no
// observer; Solvers are safe for concurrent use since each Solve call owns
// its working trees exclusively.
type Solver struct {
	logger   *slog.Logger
	observer Observer
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets a custom structured logger for per-iteration progress.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

// WithObserver registers a callback invoked with each iteration's Step.
func WithObserver(observer Observer) Option {
	return func(s *Solver) {
		s.observer = observer
	}
}

// NewSolver creates a Solver with the given options.
func NewSolver(opts ...Option) *Solver {
	s := &Solver{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return s
}

// Solve computes the limit of numerator/denominator at the given point.
//
// Each iteration evaluates both trees at the point and classifies the
// ratio: a 0/0 form replaces both trees with their derivatives and
// continues, a zero denominator alone yields ErrDivisionByZero, and
// anything else yields the determinate ratio. Exhausting maxIterations
// yields ErrMaxIterations; maxIterations of zero exhausts immediately,
// before any evaluation. A differentiation failure on either side is
// terminal and surfaces as ErrUnsupportedRule.
func (s *Solver) Solve(numerator, denominator Expr, at float64, maxIterations int) (float64, error) {
	num, den := numerator, denominator

	for i := 0; i < maxIterations; i++ {
		numVal := num.Evaluate(at)
		denVal := den.Evaluate(at)

		s.logger.Debug("iteration",
			"i", i,
			"numerator", num.String(),
			"denominator", den.String(),
			"at", at,
			"num_value", numVal,
			"den_value", denVal,
		)
		if s.observer != nil {
			s.observer(Step{
				Iteration:   i,
				Numerator:   num,
				Denominator: den,
				NumValue:    numVal,
				DenValue:    denVal,
			})
		}

		switch {
		case math.Abs(numVal) < Epsilon && math.Abs(denVal) < Epsilon:
			// 0/0: apply L'Hôpital's Rule to both sides independently.
			dNum, err := num.Differentiate()
			if err != nil {
				return 0, fmt.Errorf("differentiating numerator: %w", err)
			}
			dDen, err := den.Differentiate()
			if err != nil {
				return 0, fmt.Errorf("differentiating denominator: %w", err)
			}
			num, den = dNum, dDen
		case math.Abs(denVal) < Epsilon:
			return 0, ErrDivisionByZero
		default:
			s.logger.Debug("limit found", "i", i, "value", numVal/denVal)
			return numVal / denVal, nil
		}
	}

	return 0, ErrMaxIterations
}

// Solve computes the limit of numerator/denominator at the given point
// using a default Solver.
func Solve(numerator, denominator Expr, at float64, maxIterations int) (float64, error) {
	return NewSolver().Solve(numerator, denominator, at, maxIterations)
}
