package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/WillKirkmanM/lhopital"
	"github.com/spf13/cobra"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Compute the limit of numerator/denominator at a point",
	Long: `Computes the limit of a rational expression at a point.

The numerator and denominator are JSON expression trees, for example:
  {"type":"difference","left":{"type":"power","base":{"type":"variable"},"exponent":2},"right":{"type":"constant","value":4}}`,
	Run: func(cmd *cobra.Command, args []string) {
		numJSON, _ := cmd.Flags().GetString("numerator")
		denJSON, _ := cmd.Flags().GetString("denominator")
		at, _ := cmd.Flags().GetFloat64("at")
		maxIterations, _ := cmd.Flags().GetInt("max-iterations")
		verbose, _ := cmd.Flags().GetBool("verbose")

		num, err := lhopital.ParseJSON([]byte(numJSON))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid numerator: %v\n", err)
			os.Exit(1)
		}
		den, err := lhopital.ParseJSON([]byte(denJSON))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid denominator: %v\n", err)
			os.Exit(1)
		}

		solver := lhopital.NewSolver(lhopital.WithLogger(newLogger(verbose)))

		limit, err := solver.Solve(num, den, at, maxIterations)
		switch {
		case errors.Is(err, lhopital.ErrDivisionByZero):
			fmt.Fprintln(os.Stderr, "No limit: division by zero")
			os.Exit(2)
		case errors.Is(err, lhopital.ErrMaxIterations):
			fmt.Fprintf(os.Stderr, "No determinate form within %d iterations\n", maxIterations)
			os.Exit(2)
		case err != nil:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("lim x -> %v of (%s) / (%s) = %v\n", at, num, den, limit)
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringP("numerator", "n", "", "JSON expression tree for the numerator")
	solveCmd.Flags().StringP("denominator", "d", "", "JSON expression tree for the denominator")
	solveCmd.Flags().Float64P("at", "a", 0, "The point the variable approaches")
	solveCmd.Flags().IntP("max-iterations", "m", 5, "Iteration budget for repeated differentiation")
	_ = solveCmd.MarkFlagRequired("numerator")
	_ = solveCmd.MarkFlagRequired("denominator")
	_ = solveCmd.MarkFlagRequired("at")
}
