package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
	"github.com/matzehuels/funcplot/pkg/pipeline"
)

// stdoutPath makes -o write a single artifact to standard output.
const stdoutPath = "-"

// renderOpts holds the render flags. Flags only override the plot file when
// they were set explicitly.
type renderOpts struct {
	exprs   []string
	formats string
	output  string
	title   string
	width   int
	height  int
	points  int
	fit     bool
	legend  bool
	noGrid  bool
	refresh bool
	xMin    pointValue
	xMax    pointValue
	yMin    pointValue
	yMax    pointValue
	cache   cacheFlags
}

func (c *CLI) renderCommand() *cobra.Command {
	ro := renderOpts{
		width:  pipeline.DefaultWidth,
		height: pipeline.DefaultHeight,
		points: pipeline.DefaultPoints,
		xMin:   pointValue(pipeline.DefaultXMin),
		xMax:   pointValue(pipeline.DefaultXMax),
		yMin:   pointValue(pipeline.DefaultYMin),
		yMax:   pointValue(pipeline.DefaultYMax),
	}

	cmd := &cobra.Command{
		Use:   "render [PLOTFILE]",
		Short: "Render functions to SVG, PNG, PDF or JSON",
		Long: `Render one or more functions.

Functions come from a TOML plot file, from -e flags, or both; -e functions are
appended after the file's. Flags given explicitly override the file's values.
Functions that fail to compile are reported and skipped.

Sampled series and rendered outputs are cached under ~/.cache/funcplot, or in
redis with --cache-url.`,
		Example: `  funcplot render -e "sin(x)" -e "cos(x)" -o trig.svg
  funcplot render bell.toml -f svg,png --fit
  funcplot render -e "1/x" -f json -o - | jq .curves[0].paths`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), cmd, input, &ro)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&ro.exprs, "expr", "e", nil, "function to plot (repeatable)")
	f.StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	f.StringVarP(&ro.output, "output", "o", "", `output file (single format) or base path (multiple); "-" for stdout`)
	f.StringVar(&ro.title, "title", "", "plot title")
	f.IntVar(&ro.width, "width", ro.width, "image width in pixels")
	f.IntVar(&ro.height, "height", ro.height, "image height in pixels")
	f.IntVarP(&ro.points, "points", "n", ro.points, "samples per function")
	f.BoolVar(&ro.fit, "fit", false, "fit the viewport to the sampled values")
	f.BoolVar(&ro.legend, "legend", false, "draw a legend")
	f.BoolVar(&ro.noGrid, "no-grid", false, "omit grid lines")
	f.BoolVar(&ro.refresh, "refresh", false, "ignore cached results")
	f.Var(&ro.xMin, "x-min", "left edge of the viewport")
	f.Var(&ro.xMax, "x-max", "right edge of the viewport")
	f.Var(&ro.yMin, "y-min", "bottom edge of the viewport")
	f.Var(&ro.yMax, "y-max", "top edge of the viewport")
	ro.cache.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", completeValues(
		pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON))

	return cmd
}

// buildOptions merges the plot file (if any) with the flags.
func buildOptions(input string, ro *renderOpts, flags *pflag.FlagSet) (pipeline.Options, error) {
	var opts pipeline.Options
	if input != "" {
		var err error
		if opts, err = pipeline.LoadFile(input); err != nil {
			return opts, err
		}
	}
	for _, e := range ro.exprs {
		opts.Functions = append(opts.Functions, pipeline.Function{Expr: e})
	}

	if flags.Changed("title") {
		opts.Title = ro.title
	}
	if flags.Changed("width") {
		opts.Width = ro.width
	}
	if flags.Changed("height") {
		opts.Height = ro.height
	}
	if flags.Changed("points") {
		opts.Points = ro.points
	}
	if flags.Changed("fit") {
		opts.Fit = ro.fit
	}
	if flags.Changed("legend") {
		opts.Legend = ro.legend
	}
	if flags.Changed("no-grid") {
		opts.NoGrid = ro.noGrid
	}
	opts.Refresh = ro.refresh

	if ro.formats != "" {
		formats, err := pipeline.ParseFormats(ro.formats)
		if err != nil {
			return opts, err
		}
		opts.Formats = formats
	}

	if opts.Viewport == nil {
		r := pipeline.DefaultRange()
		opts.Viewport = &r
	}
	for _, b := range []struct {
		flag string
		dst  *float64
		src  pointValue
	}{
		{"x-min", &opts.Viewport.XMin, ro.xMin},
		{"x-max", &opts.Viewport.XMax, ro.xMax},
		{"y-min", &opts.Viewport.YMin, ro.yMin},
		{"y-max", &opts.Viewport.YMax, ro.yMax},
	} {
		if flags.Changed(b.flag) {
			*b.dst = float64(b.src)
		}
	}

	if len(opts.Functions) == 0 {
		return opts, ferrors.New(ferrors.ErrCodeInvalidInput, "nothing to plot: pass a plot file or at least one -e EXPR")
	}
	return opts, opts.ValidateAndSetDefaults()
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, input string, ro *renderOpts) error {
	logger := loggerFromContext(ctx)

	opts, err := buildOptions(input, ro, cmd.Flags())
	if err != nil {
		return err
	}
	if ro.output == stdoutPath && len(opts.Formats) > 1 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "-o - needs exactly one format, got %s", strings.Join(opts.Formats, ","))
	}

	// Status goes to stderr when the artifact itself is written to stdout.
	status := cmd.OutOrStdout()
	if ro.output == stdoutPath {
		status = cmd.ErrOrStderr()
	}

	runner, err := c.newRunner(ctx, ro.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Rendering %d function(s)...", len(opts.Functions)))
	spinner.Start()
	prog := newProgress(logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered", "curves", result.Stats.Curves, "cached", result.CacheInfo.RenderHit)

	for i := range opts.Functions {
		if _, bad := result.Diagnostics[i]; bad {
			printDiagnostic(status, fmt.Sprintf("function %d skipped: %s", i+1, opts.Functions[i].Expr),
				pipeline.SlotError(result.Engine, i))
		}
	}
	if result.Stats.Valid == 0 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "no valid functions to plot")
	}

	paths, err := writeArtifacts(cmd.OutOrStdout(), result.Artifacts, opts.Formats, input, ro.output)
	if err != nil {
		return err
	}
	logger.Debug("wrote artifacts", "files", len(paths), "plan", result.PlanHash)

	printSuccess(status, "Rendered %s", strings.Join(opts.Formats, ", "))
	for _, p := range paths {
		printFile(status, p)
	}
	printStats(status, result.Stats.Curves, result.Stats.Segments, result.CacheInfo.RenderHit)
	if len(paths) > 0 {
		fmt.Fprintln(status)
		printNextStep(status, "Explore interactively", exploreHint(opts))
	}
	return nil
}

// writeArtifacts writes one file per format and returns the paths written.
// With output "-" the single artifact goes to stdout instead.
func writeArtifacts(stdout io.Writer, artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	if output == stdoutPath {
		_, err := stdout.Write(artifacts[formats[0]])
		return nil, err
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := outputPath(output, input, format, len(formats))
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath names the file for one format. A single format with an explicit
// output is written there verbatim; otherwise the format extension is added
// to the base path.
func outputPath(output, input, format string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath derives the output base from -o or from the plot file name,
// dropping any known format extension. Without either it is "plot".
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return "plot"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func exploreHint(opts pipeline.Options) string {
	var b strings.Builder
	b.WriteString(appName + " explore")
	for _, f := range opts.Functions {
		if !f.Hidden {
			b.WriteString(" -e " + strconv.Quote(f.Expr))
		}
	}
	return b.String()
}
