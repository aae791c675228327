package sink

import (
	"math"
	"strings"

	"github.com/matzehuels/funcplot/pkg/render"
)

// Cell values that are not curve indices.
const (
	CellEmpty = -1
	CellAxis  = -2
)

// Grid is a character raster of a scene. Cells holds, per row and column,
// the index of the curve drawn there or one of the Cell constants; Runes holds
// the character to print.
type Grid struct {
	Cols, Rows int
	Cells      [][]int
	Runes      [][]rune
}

// RenderText rasterises the scene into a cols x rows grid. The scene is
// expected to have been built for a viewport of the same size, one pixel per
// cell; other sizes are scaled. Later curves draw over earlier ones.
func RenderText(s *render.Scene, cols, rows int) *Grid {
	g := &Grid{Cols: cols, Rows: rows, Cells: make([][]int, rows), Runes: make([][]rune, rows)}
	for r := range g.Cells {
		g.Cells[r] = make([]int, cols)
		g.Runes[r] = make([]rune, cols)
		for c := range g.Cells[r] {
			g.Cells[r][c] = CellEmpty
			g.Runes[r][c] = ' '
		}
	}
	if cols <= 0 || rows <= 0 || s.Width <= 0 || s.Height <= 0 {
		return g
	}
	sx := float64(cols) / float64(s.Width)
	sy := float64(rows) / float64(s.Height)

	if s.XAxis.Visible {
		r := int(s.XAxis.Pos * sy)
		for c := 0; c < cols; c++ {
			g.set(c, r, CellAxis, '─')
		}
	}
	if s.YAxis.Visible {
		c := int(s.YAxis.Pos * sx)
		for r := 0; r < rows; r++ {
			if g.at(c, r) == CellAxis {
				g.set(c, r, CellAxis, '┼')
			} else {
				g.set(c, r, CellAxis, '│')
			}
		}
	}

	for i, curve := range s.Curves {
		for _, p := range curve.Paths {
			for j := range p {
				x0, y0 := p[j].SX*sx, p[j].SY*sy
				if j == 0 {
					g.set(int(x0), int(y0), i, '•')
					continue
				}
				x1, y1 := p[j-1].SX*sx, p[j-1].SY*sy
				g.line(x1, y1, x0, y0, i)
			}
		}
	}
	return g
}

// line plots every cell crossed by the segment, stepping along the longer axis.
func (g *Grid) line(x0, y0, x1, y1 float64, curve int) {
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps == 0 {
		g.set(int(x1), int(y1), curve, '•')
		return
	}
	for k := 0; k <= steps; k++ {
		t := float64(k) / float64(steps)
		g.set(int(x0+t*(x1-x0)), int(y0+t*(y1-y0)), curve, '•')
	}
}

func (g *Grid) set(c, r, v int, ch rune) {
	if c < 0 || c >= g.Cols || r < 0 || r >= g.Rows {
		return
	}
	g.Cells[r][c] = v
	g.Runes[r][c] = ch
}

func (g *Grid) at(c, r int) int {
	if c < 0 || c >= g.Cols || r < 0 || r >= g.Rows {
		return CellEmpty
	}
	return g.Cells[r][c]
}

// String returns the grid as plain text, one line per row.
func (g *Grid) String() string {
	var b strings.Builder
	for r, row := range g.Runes {
		if r > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}
