package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/WillKirkmanM/lhopital"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through the limit of (x^2 - 4) / (x - 2) as x -> 2",
	Run: func(cmd *cobra.Command, args []string) {
		// Numerator: x^2 - 4
		numerator := lhopital.DifferenceOf(
			lhopital.PowOf(lhopital.X(), 2),
			lhopital.Const(4),
		)
		// Denominator: x - 2
		denominator := lhopital.DifferenceOf(
			lhopital.X(),
			lhopital.Const(2),
		)
		at := 2.0

		fmt.Printf("Calculating limit of f(x) = (%s) / (%s) as x -> %v\n\n", numerator, denominator, at)

		solver := lhopital.NewSolver(lhopital.WithObserver(func(step lhopital.Step) {
			fmt.Printf("Iteration %d:\n", step.Iteration)
			fmt.Printf("  Numerator:   %s\n", step.Numerator)
			fmt.Printf("  Denominator: %s\n", step.Denominator)
			fmt.Printf("  Evaluated at x = %v: %.4f / %.4f\n", at, step.NumValue, step.DenValue)
		}))

		limit, err := solver.Solve(numerator, denominator, at, 5)
		if err != nil {
			if errors.Is(err, lhopital.ErrDivisionByZero) || errors.Is(err, lhopital.ErrMaxIterations) {
				fmt.Fprintf(os.Stderr, "\nNo limit: %v\n", err)
				os.Exit(2)
			}
			fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\nFinal Result: %v\n", limit)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
