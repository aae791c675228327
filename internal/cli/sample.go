package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/funcplot/pkg/analysis"
	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputCSV   = "csv"

	defaultSamplePoints = 21
)

func (c *CLI) sampleCommand() *cobra.Command {
	var (
		from   = pointValue(-10)
		to     = pointValue(10)
		points int
		format string
		cf     cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "sample EXPR",
		Short: "Sample an expression over a range",
		Long: `Sample an expression at evenly spaced points, both ends included.

Points where the expression is undefined are shown as "undefined" in tables,
null in JSON and as an empty field in CSV.`,
		Example: `  funcplot sample "sin(x)" --from=-pi --to=pi --points 9
  funcplot sample "ln(x)" --from 0 --to 2 --format csv > ln.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format); err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), cf)
			if err != nil {
				return err
			}
			defer runner.Close()

			s, err := runner.Sample(cmd.Context(), args[0], float64(from), float64(to), points)
			if err != nil {
				return reportCompile(cmd.OutOrStdout(), err)
			}
			return writeSeries(cmd.OutOrStdout(), s, format)
		},
	}

	cmd.Flags().Var(&from, "from", "start of the range")
	cmd.Flags().Var(&to, "to", "end of the range")
	cmd.Flags().IntVarP(&points, "points", "n", defaultSamplePoints, "number of samples")
	cmd.Flags().StringVarP(&format, "format", "f", outputTable, "output format: table, json, csv")
	_ = cmd.RegisterFlagCompletionFunc("format", completeValues(outputTable, outputJSON, outputCSV))
	cf.register(cmd)
	return cmd
}

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputCSV:
		return nil
	}
	return ferrors.New(ferrors.ErrCodeInvalidFormat, "invalid output format %q (must be table, json or csv)", format)
}

func writeSeries(w io.Writer, s analysis.Series, format string) error {
	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case outputCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"x", "y"}); err != nil {
			return err
		}
		for i := range s.X {
			y := ""
			if !math.IsNaN(s.Y[i]) {
				y = num(s.Y[i])
			}
			if err := cw.Write([]string{num(s.X[i]), y}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}

	rows := make([][]string, len(s.X))
	for i := range s.X {
		y := "undefined"
		if !math.IsNaN(s.Y[i]) {
			y = num(s.Y[i])
		}
		rows[i] = []string{num(s.X[i]), y}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("x", "f(x)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1 && math.IsNaN(s.Y[row]):
				return cell.Foreground(colorDim)
			case col == 1:
				return cell.Foreground(colorCyan)
			}
			return cell
		})
	_, err := fmt.Fprintln(w, t.Render())
	if err == nil && s.Finite() < s.Len() {
		printDetail(w, "%d of %d samples undefined", s.Len()-s.Finite(), s.Len())
	}
	return err
}
