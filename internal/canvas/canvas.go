// Package canvas rasterises field drawing calls onto a grid of terminal cells.
package canvas

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/lunarcatowo/termfolio/internal/field"
)

// Each terminal cell stands for CellWidth x CellHeight virtual pixels and
// holds a 2x4 braille dot grid.
const (
	CellWidth  = 8
	CellHeight = 16

	dotWidth  = CellWidth / 2
	dotHeight = CellHeight / 4
)

// Cells dimmer than this after a fade are cleared.
const fadeFloor = 0.03

var black = colorful.Color{}

var _ field.Surface = (*Canvas)(nil)

// Cell is one terminal character. A non-zero Glyph wins over Dots.
type Cell struct {
	Color colorful.Color
	Glyph rune
	Dots  uint8
}

func (c Cell) empty() bool { return c.Glyph == 0 && c.Dots == 0 }

// Rune is the character the cell renders as.
func (c Cell) Rune() rune {
	switch {
	case c.Glyph != 0:
		return c.Glyph
	case c.Dots != 0:
		return rune(0x2800 + int(c.Dots))
	default:
		return ' '
	}
}

// Canvas is a fixed-size cell grid. Create a new one on resize.
type Canvas struct {
	cols, rows int
	cells      []Cell
	profile    Profile
}

// New returns a blank canvas of cols x rows cells using the detected colour
// profile.
func New(cols, rows int) *Canvas {
	cols = max(cols, 0)
	rows = max(rows, 0)
	return &Canvas{
		cols:    cols,
		rows:    rows,
		cells:   make([]Cell, cols*rows),
		profile: DetectProfile(),
	}
}

// SetProfile overrides the detected colour profile.
func (c *Canvas) SetProfile(p Profile) { c.profile = p }

func (c *Canvas) Cols() int { return c.cols }
func (c *Canvas) Rows() int { return c.rows }

// At returns the cell at col,row. Out-of-range positions read as empty.
func (c *Canvas) At(col, row int) Cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return Cell{}
	}
	return c.cells[row*c.cols+col]
}

// Size reports the canvas in virtual pixels.
func (c *Canvas) Size() (float64, float64) {
	return float64(c.cols * CellWidth), float64(c.rows * CellHeight)
}

// Fade darkens every cell by alpha. 1 clears the canvas.
func (c *Canvas) Fade(alpha float64) {
	if alpha <= 0 {
		return
	}
	if alpha >= 1 {
		clear(c.cells)
		return
	}
	for i := range c.cells {
		cell := &c.cells[i]
		if cell.empty() {
			continue
		}
		cell.Color = cell.Color.BlendRgb(black, alpha)
		if brightness(cell.Color) < fadeFloor {
			*cell = Cell{}
		}
	}
}

// FillRect paints a rectangle. Cells it covers edge to edge get a block
// glyph; partially covered cells get the matching braille dots.
func (c *Canvas) FillRect(x, y, w, h float64, col field.Color) {
	if w <= 0 || h <= 0 || col.A <= 0 {
		return
	}
	cc := toColorful(col)
	c0 := max(int(math.Floor(x/CellWidth)), 0)
	c1 := min(int(math.Ceil((x+w)/CellWidth)), c.cols)
	r0 := max(int(math.Floor(y/CellHeight)), 0)
	r1 := min(int(math.Ceil((y+h)/CellHeight)), c.rows)

	for row := r0; row < r1; row++ {
		for colIdx := c0; colIdx < c1; colIdx++ {
			left := float64(colIdx * CellWidth)
			top := float64(row * CellHeight)
			fx0 := math.Max(x-left, 0)
			fx1 := math.Min(x+w-left, CellWidth)
			fy0 := math.Max(y-top, 0)
			fy1 := math.Min(y+h-top, CellHeight)
			if fx1 <= fx0 || fy1 <= fy0 {
				continue
			}
			cell := &c.cells[row*c.cols+colIdx]
			if fx0 == 0 && fx1 == CellWidth {
				if cell.Dots == 0 {
					cell.Glyph = blockGlyph(fy0, fy1)
				}
				blend(cell, cc, col.A)
				continue
			}
			for dx := int(fx0 / dotWidth); dx < int(math.Ceil(fx1/dotWidth)); dx++ {
				for dy := int(fy0 / dotHeight); dy < int(math.Ceil(fy1/dotHeight)); dy++ {
					cell.Dots |= 1 << brailleBits[dx][dy]
				}
			}
			cell.Glyph = 0
			blend(cell, cc, col.A)
		}
	}
}

// blockGlyph picks a block character for a full-width span of rows fy0..fy1
// within one cell.
func blockGlyph(fy0, fy1 float64) rune {
	const half = CellHeight / 2
	switch {
	case fy0 >= half:
		return '▄'
	case fy1 <= half:
		return '▀'
	default:
		return '█'
	}
}

// Line draws a one-dot-wide line between two points.
func (c *Canvas) Line(x0, y0, x1, y1 float64, col field.Color) {
	if col.A <= 0 {
		return
	}
	cc := toColorful(col)
	ax, ay := dotCoord(x0, dotWidth), dotCoord(y0, dotHeight)
	bx, by := dotCoord(x1, dotWidth), dotCoord(y1, dotHeight)

	dx := abs(bx - ax)
	dy := -abs(by - ay)
	sx, sy := 1, 1
	if ax > bx {
		sx = -1
	}
	if ay > by {
		sy = -1
	}
	e := dx + dy
	for {
		c.setDot(ax, ay, cc, col.A)
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			ax += sx
		}
		if e2 <= dx {
			e += dx
			ay += sy
		}
	}
}

// Dot lights the braille dot under x,y.
func (c *Canvas) Dot(x, y float64, col field.Color) {
	if col.A <= 0 {
		return
	}
	c.setDot(dotCoord(x, dotWidth), dotCoord(y, dotHeight), toColorful(col), col.A)
}

func (c *Canvas) setDot(dx, dy int, col colorful.Color, alpha float64) {
	if dx < 0 || dy < 0 {
		return
	}
	colIdx, row := dx/2, dy/4
	if colIdx >= c.cols || row >= c.rows {
		return
	}
	cell := &c.cells[row*c.cols+colIdx]
	cell.Glyph = 0
	cell.Dots |= 1 << brailleBits[dx%2][dy%4]
	blend(cell, col, alpha)
}

// Overlay is a block of pre-rendered lines spliced over the canvas.
type Overlay struct {
	Lines []string
	X, Y  int
	Width int
}

// Render returns the canvas as ANSI-coloured rows joined by newlines, with
// ov drawn on top.
func (c *Canvas) Render(ov Overlay) string {
	rows := make([]string, c.rows)
	for row := range c.rows {
		var sb strings.Builder
		state := newANSIState(c.profile)
		if i := row - ov.Y; i >= 0 && i < len(ov.Lines) {
			left := min(max(ov.X, 0), c.cols)
			c.renderSpan(&sb, &state, row, 0, left)
			state.reset(&sb)
			line := ov.Lines[i]
			sb.WriteString(line)
			width := max(ov.Width, lipgloss.Width(line))
			if pad := width - lipgloss.Width(line); pad > 0 {
				sb.WriteString(strings.Repeat(" ", pad))
			}
			c.renderSpan(&sb, &state, row, left+width, c.cols)
		} else {
			c.renderSpan(&sb, &state, row, 0, c.cols)
		}
		state.reset(&sb)
		rows[row] = sb.String()
	}
	return strings.Join(rows, "\n")
}

func (c *Canvas) renderSpan(sb *strings.Builder, state *ansiState, row, from, to int) {
	for col := max(from, 0); col < to && col < c.cols; col++ {
		cell := c.cells[row*c.cols+col]
		if cell.empty() {
			sb.WriteByte(' ')
			continue
		}
		state.set(sb, cell.Color)
		sb.WriteRune(cell.Rune())
	}
}

// Each calls fn for every non-empty cell.
func (c *Canvas) Each(fn func(col, row int, cell Cell)) {
	for i, cell := range c.cells {
		if cell.empty() {
			continue
		}
		fn(i%c.cols, i/c.cols, cell)
	}
}

func blend(cell *Cell, col colorful.Color, alpha float64) {
	base := cell.Color
	if alpha >= 1 {
		cell.Color = col
		return
	}
	cell.Color = base.BlendRgb(col, alpha)
}

func toColorful(c field.Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func brightness(c colorful.Color) float64 {
	return math.Max(c.R, math.Max(c.G, c.B))
}

func dotCoord(v float64, size int) int {
	return int(math.Floor(v / float64(size)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
