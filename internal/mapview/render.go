package mapview

import (
	"math"
	"strings"
)

// Glyphs used by Render
const (
	GlyphEdge    = '.'
	GlyphNode    = 'o'
	GlyphCurrent = '@'
	GlyphExit    = '>'
)

// Placeholder is drawn when there is no graph to show
const Placeholder = "[ no map data ]"

// Render draws the current view into rows lines of cols characters. Nodes
// are labelled with their id when the label fits.
func (v *Viewport) Render(cols, rows int) []string {
	if cols <= 0 || rows <= 0 {
		return nil
	}

	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}

	if v.Empty() {
		row := rows / 2
		col := (cols - len(Placeholder)) / 2
		writeLabel(grid[row], col, Placeholder)
		return lines(grid)
	}

	for _, e := range v.Edges() {
		c1, r1 := v.project(e.Source.X, e.Source.Y, cols, rows)
		c2, r2 := v.project(e.Target.X, e.Target.Y, cols, rows)
		drawLine(grid, c1, r1, c2, r2)
	}

	for _, id := range v.graph.NodeIDs() {
		n := v.graph.Nodes[id]
		c, r := v.project(n.X, n.Y, cols, rows)
		if !inBounds(grid, c, r) {
			continue
		}
		glyph := GlyphNode
		switch {
		case id == v.currentNode:
			glyph = GlyphCurrent
		case n.IsExitNode:
			glyph = GlyphExit
		}
		grid[r][c] = glyph
	}

	for _, id := range v.graph.NodeIDs() {
		n := v.graph.Nodes[id]
		c, r := v.project(n.X, n.Y, cols, rows)
		if inBounds(grid, c, r) {
			writeLabel(grid[r], c+2, id)
		}
	}

	return lines(grid)
}

// NodeAtCell returns the node drawn at, or directly beside, the given cell of
// a cols×rows rendering.
func (v *Viewport) NodeAtCell(col, row, cols, rows int) (string, bool) {
	if v.Empty() {
		return "", false
	}
	for _, id := range v.graph.NodeIDs() {
		n := v.graph.Nodes[id]
		c, r := v.project(n.X, n.Y, cols, rows)
		if r == row && col >= c-1 && col <= c+1 {
			return id, true
		}
	}
	return "", false
}

func (v *Viewport) project(x, y float64, cols, rows int) (int, int) {
	fx := (x - v.view.X) / v.view.Width
	fy := (y - v.view.Y) / v.view.Height
	return int(math.Round(fx * float64(cols-1))), int(math.Round(fy * float64(rows-1)))
}

func drawLine(grid [][]rune, c1, r1, c2, r2 int) {
	steps := max(abs(c2-c1), abs(r2-r1))
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		c := int(math.Round(float64(c1) + t*float64(c2-c1)))
		r := int(math.Round(float64(r1) + t*float64(r2-r1)))
		if inBounds(grid, c, r) && grid[r][c] == ' ' {
			grid[r][c] = GlyphEdge
		}
	}
}

func writeLabel(row []rune, col int, label string) {
	for i, ch := range label {
		c := col + i
		if c < 0 {
			continue
		}
		if c >= len(row) {
			return
		}
		switch row[c] {
		case GlyphNode, GlyphCurrent, GlyphExit:
			return
		}
		row[c] = ch
	}
}

func inBounds(grid [][]rune, c, r int) bool {
	return r >= 0 && r < len(grid) && c >= 0 && c < len(grid[r])
}

func lines(grid [][]rune) []string {
	out := make([]string, len(grid))
	for i, row := range grid {
		out[i] = strings.TrimRight(string(row), " ")
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
