package lhopital_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	lhopital "github.com/WillKirkmanM/lhopital"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// (x^2 - 4) / (x - 2) at x -> 2, the canonical 0/0 form.
func classicPair() (lhopital.Expr, lhopital.Expr) {
	num := lhopital.DifferenceOf(lhopital.PowOf(lhopital.X(), 2), lhopital.Const(4))
	den := lhopital.DifferenceOf(lhopital.X(), lhopital.Const(2))
	return num, den
}

func TestSolve_IndeterminateForm(t *testing.T) {
	num, den := classicPair()

	limit, err := lhopital.Solve(num, den, 2, 5)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, limit, 1e-12)
}

func TestSolve_IndeterminateForm_StepByStep(t *testing.T) {
	num, den := classicPair()

	var steps []lhopital.Step
	solver := lhopital.NewSolver(lhopital.WithObserver(func(step lhopital.Step) {
		steps = append(steps, step)
	}))

	limit, err := solver.Solve(num, den, 2, 5)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, limit, 1e-12)

	// Iteration 0 sees the original trees evaluating to 0/0.
	require.Len(t, steps, 2)
	assert.Equal(t, 0, steps[0].Iteration)
	assert.Equal(t, "x^2 - 4", steps[0].Numerator.String())
	assert.Equal(t, "x - 2", steps[0].Denominator.String())
	assert.InDelta(t, 0.0, steps[0].NumValue, 1e-12)
	assert.InDelta(t, 0.0, steps[0].DenValue, 1e-12)

	// Iteration 1 sees the unsimplified derivatives and a determinate ratio.
	assert.Equal(t, 1, steps[1].Iteration)
	assert.Equal(t, "2*x^1 - 0", steps[1].Numerator.String())
	assert.Equal(t, "1 - 0", steps[1].Denominator.String())
	assert.InDelta(t, 4.0, steps[1].NumValue, 1e-12)
	assert.InDelta(t, 1.0, steps[1].DenValue, 1e-12)
}

func TestSolve_DeterminateImmediately(t *testing.T) {
	// (x + 1) / (x + 2) at x=0 -> 0.5, no differentiation needed.
	num := lhopital.SumOf(lhopital.X(), lhopital.Const(1))
	den := lhopital.SumOf(lhopital.X(), lhopital.Const(2))

	limit, err := lhopital.Solve(num, den, 0, 5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, limit, 1e-12)
}

func TestSolve_DivisionByZero(t *testing.T) {
	for _, at := range []float64{-1, 0, 3.5} {
		_, err := lhopital.Solve(lhopital.Const(1), lhopital.Const(0), at, 5)
		assert.ErrorIs(t, err, lhopital.ErrDivisionByZero)
	}
}

func TestSolve_MaxIterationsExceeded(t *testing.T) {
	// 0/0 forever: the derivative of a zero constant is still zero.
	var steps int
	solver := lhopital.NewSolver(lhopital.WithObserver(func(lhopital.Step) {
		steps++
	}))

	_, err := solver.Solve(lhopital.Const(0), lhopital.Const(0), 0, 3)
	assert.ErrorIs(t, err, lhopital.ErrMaxIterations)
	assert.Equal(t, 3, steps)
}

func TestSolve_ZeroBudget(t *testing.T) {
	// maxIterations of zero exceeds the budget before any evaluation.
	var observed bool
	solver := lhopital.NewSolver(lhopital.WithObserver(func(lhopital.Step) {
		observed = true
	}))

	num, den := classicPair()
	_, err := solver.Solve(num, den, 2, 0)
	assert.ErrorIs(t, err, lhopital.ErrMaxIterations)
	assert.False(t, observed)
}

func TestSolve_UnsupportedRulePropagates(t *testing.T) {
	// x*x / x at x=0 is 0/0; differentiating the Product numerator fails.
	num := lhopital.ProductOf(lhopital.X(), lhopital.X())
	den := lhopital.X()

	_, err := lhopital.Solve(num, den, 0, 5)
	assert.ErrorIs(t, err, lhopital.ErrUnsupportedRule)
}

func TestSolve_UnsupportedRuleInDenominator(t *testing.T) {
	num := lhopital.X()
	den := lhopital.ProductOf(lhopital.X(), lhopital.X())

	_, err := lhopital.Solve(num, den, 0, 5)
	assert.ErrorIs(t, err, lhopital.ErrUnsupportedRule)
}

func TestSolve_InputTreesUntouched(t *testing.T) {
	num, den := classicPair()
	numBefore, denBefore := num.String(), den.String()

	_, err := lhopital.Solve(num, den, 2, 5)
	require.NoError(t, err)

	assert.Equal(t, numBefore, num.String())
	assert.Equal(t, denBefore, den.String())

	// The same trees resolve again: no state leaks between calls.
	limit, err := lhopital.Solve(num, den, 2, 5)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, limit, 1e-12)
}

func TestSolver_LogsIterations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	num, den := classicPair()
	solver := lhopital.NewSolver(lhopital.WithLogger(logger))

	_, err := solver.Solve(num, den, 2, 5)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"iteration"`)
	assert.Contains(t, out, `"numerator":"x^2 - 4"`)
	assert.Contains(t, out, `"denominator":"x - 2"`)
}

func TestSolve_Termination(t *testing.T) {
	// Every input returns within the budget with a value or a typed error.
	pairs := []struct {
		num, den lhopital.Expr
		at       float64
	}{
		{lhopital.Const(0), lhopital.Const(0), 0},
		{lhopital.Const(1), lhopital.Const(0), 2},
		{lhopital.PowOf(lhopital.X(), 3), lhopital.X(), 0},
		{lhopital.ProductOf(lhopital.X(), lhopital.X()), lhopital.X(), 0},
	}
	for _, p := range pairs {
		var steps int
		solver := lhopital.NewSolver(lhopital.WithObserver(func(lhopital.Step) {
			steps++
		}))
		_, err := solver.Solve(p.num, p.den, p.at, 4)
		if err != nil {
			isKnown := errors.Is(err, lhopital.ErrDivisionByZero) ||
				errors.Is(err, lhopital.ErrMaxIterations) ||
				errors.Is(err, lhopital.ErrUnsupportedRule)
			assert.True(t, isKnown, "unexpected error: %v", err)
		}
		assert.LessOrEqual(t, steps, 4)
	}
}
