package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/funcplot/pkg/analysis"
)

func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		from      = pointValue(-10)
		to        = pointValue(10)
		method    string
		intervals int
		asJSON    bool
		cf        cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "analyze EXPR",
		Short: "Find roots and extrema, integrate and summarise an expression",
		Long: `Analyse an expression over a range.

Roots and stationary points are located by scanning 1000 samples for sign
changes and refining each bracket by bisection; two zeros closer together than
the sample spacing may be missed. The integral uses the trapezoid rule over
--intervals subintervals, or Gauss-Legendre quadrature of order --intervals
with --method legendre.`,
		Example: `  funcplot analyze "x^3 - 3*x" --from -3 --to 3
  funcplot analyze "exp(-x^2)" --from=-5 --to 5 --method legendre`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := analysis.ParseMethod(method)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), cf)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(loggerFromContext(cmd.Context()))
			rep, err := runner.Analyze(cmd.Context(), args[0], float64(from), float64(to),
				analysis.ReportOptions{Method: m, Intervals: intervals})
			if err != nil {
				return reportCompile(cmd.OutOrStdout(), err)
			}
			prog.done("Analysis complete", "roots", len(rep.Roots), "extrema", len(rep.Extrema))

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}

	cmd.Flags().Var(&from, "from", "start of the range")
	cmd.Flags().Var(&to, "to", "end of the range")
	cmd.Flags().StringVar(&method, "method", string(analysis.Trapezoid), "integration method: trapezoid, legendre")
	cmd.Flags().IntVar(&intervals, "intervals", 0, "trapezoid subintervals or Gauss-Legendre order (0 = default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	_ = cmd.RegisterFlagCompletionFunc("method", completeValues(string(analysis.Trapezoid), string(analysis.Legendre)))
	cf.register(cmd)
	return cmd
}

func printReport(w io.Writer, r *analysis.Report) {
	fmt.Fprintln(w, StyleTitle.Render(r.Expression))
	printKeyValue(w, "range", fmt.Sprintf("[%s, %s]", num(r.XMin), num(r.XMax)))

	if len(r.Roots) == 0 {
		printKeyValue(w, "roots", StyleDim.Render("none"))
	} else {
		roots := make([]string, len(r.Roots))
		for i, x := range r.Roots {
			roots[i] = num(x)
		}
		printKeyValue(w, "roots", strings.Join(roots, ", "))
	}

	if len(r.Extrema) == 0 {
		printKeyValue(w, "extrema", StyleDim.Render("none"))
	}
	for i, e := range r.Extrema {
		key := ""
		if i == 0 {
			key = "extrema"
		}
		printKeyValue(w, key, fmt.Sprintf("%-8s x = %s, y = %s", e.Kind, num(e.X), num(e.Y)))
	}

	if r.Integral != nil {
		printKeyValue(w, "integral", fmt.Sprintf("%s (%s)", num(*r.Integral), r.Method))
	} else {
		printKeyValue(w, "integral", StyleWarning.Render(r.IntegralError))
	}

	if r.Stats.ValidCount == 0 {
		printKeyValue(w, "stats", StyleDim.Render("no finite samples"))
		return
	}
	printKeyValue(w, "min", num(r.Stats.Min))
	printKeyValue(w, "max", num(r.Stats.Max))
	printKeyValue(w, "mean", num(r.Stats.Mean))
	printKeyValue(w, "stddev", num(r.Stats.StdDev))
	printKeyValue(w, "samples", fmt.Sprintf("%d finite of %d", r.Stats.ValidCount, analysis.Resolution))
}

func (c *CLI) rootCommand() *cobra.Command {
	var (
		lo, hi pointValue
		tol    float64
		cf     cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "root EXPR --lo LO --hi HI",
		Short: "Find a zero inside a bracket by bisection",
		Long: `Find a zero of EXPR between --lo and --hi by bisection.

The expression must change sign between the ends of the bracket. The search
stops when |f(x)| or the bracket half-width drops below --tol and fails after
100 halvings. Bracket ends may be negative or constant expressions.`,
		Example: `  funcplot root "x^2 - 2" --lo 0 --hi 2
  funcplot root "x^2 - 4" --lo -3 --hi 0
  funcplot root "cos(x)" --lo 0 --hi pi --tol 1e-12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context(), cf)
			if err != nil {
				return err
			}
			defer runner.Close()

			x, err := runner.Root(cmd.Context(), args[0], float64(lo), float64(hi), tol)
			if err != nil {
				return reportCompile(cmd.OutOrStdout(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), num(x))
			return nil
		},
	}
	f := cmd.Flags()
	f.Var(&lo, "lo", "left end of the bracket")
	f.Var(&hi, "hi", "right end of the bracket")
	f.Float64Var(&tol, "tol", analysis.RootTolerance, "convergence tolerance")
	_ = cmd.MarkFlagRequired("lo")
	_ = cmd.MarkFlagRequired("hi")
	cf.register(cmd)
	return cmd
}
