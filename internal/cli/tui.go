package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/funcplot/pkg/analysis"
	"github.com/matzehuels/funcplot/pkg/expr"
	"github.com/matzehuels/funcplot/pkg/pipeline"
	"github.com/matzehuels/funcplot/pkg/render"
	"github.com/matzehuels/funcplot/pkg/render/sink"
	"github.com/matzehuels/funcplot/pkg/viewport"
)

const (
	panStep  = 0.1
	zoomStep = 1.5

	// chromeLines is the number of terminal lines used around the plot.
	chromeLines = 4

	defaultCols = 80
	defaultRows = 24 - chromeLines
)

var (
	styleAxis   = lipgloss.NewStyle().Foreground(colorDim)
	styleHelp   = lipgloss.NewStyle().Foreground(colorDim)
	styleBounds = lipgloss.NewStyle().Foreground(colorGray)
)

func (c *CLI) exploreCommand() *cobra.Command {
	ro := renderOpts{
		xMin: pointValue(pipeline.DefaultXMin),
		xMax: pointValue(pipeline.DefaultXMax),
		yMin: pointValue(pipeline.DefaultYMin),
		yMax: pointValue(pipeline.DefaultYMax),
	}

	cmd := &cobra.Command{
		Use:   "explore [PLOTFILE]",
		Short: "Explore functions interactively in the terminal",
		Long: `Plot functions in the terminal and navigate with the keyboard.

  arrows, h j k l   pan
  + / -             zoom in / out
  f                 fit the view to the visible curves
  r                 reset the view
  q                 quit`,
		Example: `  funcplot explore -e "sin(x)" -e "x/3"
  funcplot explore bell.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			opts, err := buildOptions(input, &ro, cmd.Flags())
			if err != nil {
				return err
			}
			m, err := newExploreModel(opts)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("starting explorer", "functions", len(opts.Functions))

			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&ro.exprs, "expr", "e", nil, "function to plot (repeatable)")
	f.Var(&ro.xMin, "x-min", "left edge of the view")
	f.Var(&ro.xMax, "x-max", "right edge of the view")
	f.Var(&ro.yMin, "y-min", "bottom edge of the view")
	f.Var(&ro.yMax, "y-max", "top edge of the view")
	return cmd
}

// exploreModel is the bubbletea model of the explorer. The plot uses one
// viewport pixel per terminal cell.
type exploreModel struct {
	fns   []pipeline.Function
	eng   *expr.Engine
	an    *analysis.Analyzer
	view  *viewport.Viewport
	home  pipeline.Range
	diags []string

	// message is shown in the status line until the next key.
	message string
}

func newExploreModel(opts pipeline.Options) (exploreModel, error) {
	eng := expr.NewEngine()
	m := exploreModel{fns: opts.Functions, eng: eng, home: *opts.Viewport}
	for i, f := range opts.Functions {
		if !eng.SetExpression(i, f.Expr) {
			m.diags = append(m.diags, fmt.Sprintf("%d: %s", i+1, eng.Diagnostic(i)))
		}
	}
	an := analysis.New(eng)
	an.Workers = 1
	m.an = an

	h := m.home
	v, err := viewport.New(h.XMin, h.XMax, h.YMin, h.YMax, defaultCols, defaultRows)
	if err != nil {
		return exploreModel{}, err
	}
	m.view = v
	return m, nil
}

func (m exploreModel) Init() tea.Cmd { return nil }

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rows := max(msg.Height-chromeLines, 5)
		cols := max(msg.Width, 10)
		if err := m.view.SetScreenSize(cols, rows); err != nil {
			m.message = err.Error()
		}
	case tea.KeyMsg:
		m.message = ""
		var err error
		cx, cy := m.view.Center()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			err = m.view.Pan(-panStep, 0)
		case "right", "l":
			err = m.view.Pan(panStep, 0)
		case "up", "k":
			err = m.view.Pan(0, panStep)
		case "down", "j":
			err = m.view.Pan(0, -panStep)
		case "+", "=":
			err = m.view.Zoom(zoomStep, cx, cy)
		case "-", "_":
			err = m.view.Zoom(1/zoomStep, cx, cy)
		case "f":
			if !m.view.AutoFit(m.series()...) {
				m.message = "nothing to fit"
			}
		case "r":
			err = m.view.SetRange(m.home.XMin, m.home.XMax, m.home.YMin, m.home.YMax)
		}
		if err != nil {
			m.message = err.Error()
		}
	}
	return m, nil
}

// plots samples every visible valid function at one point per column.
func (m exploreModel) plots() []render.Plot {
	xMin, xMax, _, _ := m.view.Bounds()
	cols, _ := m.view.Size()
	var out []render.Plot
	for i, f := range m.fns {
		if f.Hidden || !m.eng.IsValid(i) {
			continue
		}
		s, err := m.an.Sample(i, xMin, xMax, max(cols, 2))
		if err != nil {
			continue
		}
		out = append(out, render.Plot{Label: label(f), Color: curveColor(f, i), Data: s})
	}
	return out
}

func (m exploreModel) series() []viewport.XYer {
	plots := m.plots()
	out := make([]viewport.XYer, len(plots))
	for i, p := range plots {
		out[i] = p.Data
	}
	return out
}

func (m exploreModel) View() string {
	s := render.Build(m.view, m.plots(), render.WithoutGrid())
	cols, rows := m.view.Size()
	g := sink.RenderText(s, cols, rows)

	var b strings.Builder
	b.WriteString(colorGrid(g, s))
	b.WriteByte('\n')

	xMin, xMax, yMin, yMax := m.view.Bounds()
	b.WriteString(styleBounds.Render(fmt.Sprintf("x [%s, %s]  y [%s, %s]",
		render.FormatNumber(xMin), render.FormatNumber(xMax),
		render.FormatNumber(yMin), render.FormatNumber(yMax))))
	for _, c := range s.Curves {
		b.WriteString("  ")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("● " + c.Label))
	}
	b.WriteByte('\n')

	switch {
	case m.message != "":
		b.WriteString(StyleWarning.Render(m.message))
	case len(m.diags) > 0:
		b.WriteString(StyleError.Render("invalid: " + strings.Join(m.diags, "; ")))
	}
	b.WriteByte('\n')
	b.WriteString(styleHelp.Render("←↓↑→/hjkl pan  +/- zoom  f fit  r reset  q quit"))
	return b.String()
}

// colorGrid renders the text grid, styling each run of equal cells once.
func colorGrid(g *sink.Grid, s *render.Scene) string {
	styles := make([]lipgloss.Style, len(s.Curves))
	for i, c := range s.Curves {
		styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color))
	}
	style := func(cell int) (lipgloss.Style, bool) {
		switch {
		case cell == sink.CellAxis:
			return styleAxis, true
		case cell >= 0 && cell < len(styles):
			return styles[cell], true
		}
		return lipgloss.Style{}, false
	}

	var b strings.Builder
	for r := 0; r < g.Rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c := 0; c < g.Cols; {
			end := c + 1
			for end < g.Cols && g.Cells[r][end] == g.Cells[r][c] {
				end++
			}
			run := string(g.Runes[r][c:end])
			if st, ok := style(g.Cells[r][c]); ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			c = end
		}
	}
	return b.String()
}

func label(f pipeline.Function) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Expr
}

// curveColor is the function's colour or the palette colour for its index,
// matching what render picks for plot files.
func curveColor(f pipeline.Function, i int) render.Color {
	if c, err := render.ParseColor(f.Color); err == nil && f.Color != "" {
		return c
	}
	return render.PaletteColor(i)
}
