package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
	"github.com/matzehuels/funcplot/pkg/expr"
	"github.com/matzehuels/funcplot/pkg/pipeline"
)

// errInvalidExpression is returned after a compile diagnostic was printed.
var errInvalidExpression = errors.New("invalid expression")

func (c *CLI) evalCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "eval EXPR [X...]",
		Short: "Evaluate an expression at one or more points",
		Long: `Evaluate an expression at one or more points.

Each X may itself be a constant expression such as pi/2 or sqrt(2). Without
points, eval checks the expression and prints its fully parenthesised form.

Arguments starting with "-" are read as flags. Put -- before the expression
when it or any point is negative.`,
		Example: `  funcplot eval "sin(x)^2 + cos(x)^2" 0 1 pi/3
  funcplot eval "1/(x-2)" 2
  funcplot eval -- "-2^2"
  funcplot eval --json -- "x^2" -2 -pi`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEval(cmd.OutOrStdout(), args[0], args[1:], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

type evalResult struct {
	X     float64  `json:"x"`
	Y     *float64 `json:"y"`
	Error string   `json:"error,omitempty"`
}

func (c *CLI) runEval(w io.Writer, src string, points []string, asJSON bool) error {
	eng := expr.NewEngine()
	if !eng.SetExpression(0, src) {
		return reportCompile(w, pipeline.SlotError(eng, 0))
	}
	if len(points) == 0 {
		p, err := eng.Handle(0)
		if err != nil {
			return err
		}
		printSuccess(w, "valid expression")
		printKeyValue(w, "parsed", p.String())
		printKeyValue(w, "uses x", strconv.FormatBool(p.DependsOnX()))
		return nil
	}

	results := make([]evalResult, 0, len(points))
	failed := 0
	for _, arg := range points {
		x, err := parsePoint(arg)
		if err != nil {
			return err
		}
		r := evalResult{X: x}
		if y, err := eng.Evaluate(0, x); err != nil {
			r.Error = ferrors.UserMessage(err)
			failed++
		} else {
			r.Y = &y
		}
		results = append(results, r)
	}
	c.Logger.Debug("evaluated", "expr", src, "points", len(results), "failed", failed)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Y == nil {
				printError(w, "f(%s): %s", num(r.X), r.Error)
				continue
			}
			fmt.Fprintf(w, "f(%s) = %s\n", StyleDim.Render(num(r.X)), StyleNumber.Render(num(*r.Y)))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d evaluations failed", failed, len(results))
	}
	return nil
}

// reportCompile prints compile failures with a caret and collapses them into
// errInvalidExpression. Other errors pass through.
func reportCompile(w io.Writer, err error) error {
	if se := syntaxError(err); se != nil {
		printDiagnostic(w, "invalid expression", se)
		return errInvalidExpression
	}
	if ferrors.Is(err, ferrors.ErrCodeSyntax) {
		printError(w, "%s", ferrors.UserMessage(err))
		return errInvalidExpression
	}
	return err
}

func syntaxError(err error) *expr.SyntaxError {
	var se *expr.SyntaxError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

// parsePoint evaluates a constant expression such as "2", "-pi" or "e^2".
func parsePoint(s string) (float64, error) {
	p, err := expr.Compile(s)
	if err != nil {
		return 0, fmt.Errorf("point %q: %w", s, err)
	}
	if p.DependsOnX() {
		return 0, ferrors.New(ferrors.ErrCodeInvalidArgument, "point %q must not depend on x", s)
	}
	v, err := p.Eval(0)
	if err != nil {
		return 0, fmt.Errorf("point %q: %w", s, err)
	}
	return v, nil
}

// pointValue is a flag holding a number written as a constant expression.
type pointValue float64

func (p *pointValue) String() string { return num(float64(*p)) }
func (p *pointValue) Type() string   { return "number" }

func (p *pointValue) Set(s string) error {
	v, err := parsePoint(s)
	if err != nil {
		return err
	}
	*p = pointValue(v)
	return nil
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
