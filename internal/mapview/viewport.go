// Package mapview projects a map graph onto a zoomable view rectangle and
// reports node selection to its owner. It never mutates session state.
package mapview

import (
	"math"
	"sort"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
)

// Geometry, in the graph's abstract units
const (
	NodeRadius    = 10.0
	Padding       = 2.5 * NodeRadius
	MinViewWidth  = 100.0
	MinViewHeight = 75.0

	// MaxZoom bounds the view width to [initial/MaxZoom, initial*MaxZoom]
	MaxZoom = 3.0

	WheelZoomFactor  = 1.1
	ButtonZoomFactor = 1.2
)

// Rect is a view rectangle in graph coordinates
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Center returns the midpoint of the rectangle
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Edge is one undirected connection to draw
type Edge struct {
	Source *chimera.MapNode
	Target *chimera.MapNode
}

// Viewport holds the view state for one graph
type Viewport struct {
	graph       *chimera.MapGraph
	initial     Rect
	view        Rect
	currentNode string
	onNodeClick func(nodeID string)
}

// New returns an empty viewport
func New() *Viewport {
	return &Viewport{}
}

// SetGraph replaces the graph and recomputes the initial view. Passing the
// graph already shown is a no-op so zoom survives state refreshes.
func (v *Viewport) SetGraph(g *chimera.MapGraph) {
	if g == v.graph {
		return
	}
	v.graph = g
	v.initial = initialRect(g)
	v.view = v.initial
}

// Graph returns the graph being shown
func (v *Viewport) Graph() *chimera.MapGraph {
	return v.graph
}

// SetCurrentNode marks the node the player occupies
func (v *Viewport) SetCurrentNode(id string) {
	v.currentNode = id
}

// Empty reports whether there is nothing to draw
func (v *Viewport) Empty() bool {
	return v.graph == nil || len(v.graph.Nodes) == 0
}

// View returns the current view rectangle
func (v *Viewport) View() Rect {
	return v.view
}

// Initial returns the rectangle computed when the graph was set
func (v *Viewport) Initial() Rect {
	return v.initial
}

// Zoom scales the view width by factor (>1 zooms out), clamps it to the
// allowed range, keeps the aspect ratio and recenters on the previous center.
func (v *Viewport) Zoom(factor float64) {
	if v.Empty() || factor <= 0 || v.view.Width <= 0 {
		return
	}

	cx, cy := v.view.Center()
	aspect := v.view.Height / v.view.Width

	width := v.view.Width * factor
	width = math.Max(width, v.initial.Width/MaxZoom)
	width = math.Min(width, v.initial.Width*MaxZoom)
	height := width * aspect

	v.view = Rect{
		X:      cx - width/2,
		Y:      cy - height/2,
		Width:  width,
		Height: height,
	}
}

// ZoomIn zooms in by one button step
func (v *Viewport) ZoomIn() {
	v.Zoom(1 / ButtonZoomFactor)
}

// ZoomOut zooms out by one button step
func (v *Viewport) ZoomOut() {
	v.Zoom(ButtonZoomFactor)
}

// Wheel applies a scroll delta; positive deltas zoom out
func (v *Viewport) Wheel(delta float64) {
	switch {
	case delta > 0:
		v.Zoom(WheelZoomFactor)
	case delta < 0:
		v.Zoom(1 / WheelZoomFactor)
	}
}

// Reset restores the initial view
func (v *Viewport) Reset() {
	v.view = v.initial
}

// Edges returns each connection once, with Source.ID < Target.ID, sorted
func (v *Viewport) Edges() []Edge {
	if v.Empty() {
		return nil
	}

	var edges []Edge
	for _, id := range v.graph.NodeIDs() {
		src := v.graph.Nodes[id]
		for _, targetID := range src.Connections {
			if !(src.ID < targetID) {
				continue
			}
			dst, ok := v.graph.Nodes[targetID]
			if !ok {
				continue
			}
			edges = append(edges, Edge{Source: src, Target: dst})
		}
	}

	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Source.ID != edges[j].Source.ID {
			return edges[i].Source.ID < edges[j].Source.ID
		}
		return edges[i].Target.ID < edges[j].Target.ID
	})
	return edges
}

// OnNodeClick binds the click handler. A nil handler disables selection.
func (v *Viewport) OnNodeClick(fn func(nodeID string)) {
	v.onNodeClick = fn
}

// Click reports a click on nodeID to the bound handler. It returns false when
// no handler is bound or the node is not on the graph.
func (v *Viewport) Click(nodeID string) bool {
	if v.onNodeClick == nil || v.Empty() {
		return false
	}
	if _, ok := v.graph.Node(nodeID); !ok {
		return false
	}
	v.onNodeClick(nodeID)
	return true
}

// HitTest returns the node whose disc contains the graph point (x, y)
func (v *Viewport) HitTest(x, y float64) (string, bool) {
	if v.Empty() {
		return "", false
	}
	best, bestDist := "", math.Inf(1)
	for _, id := range v.graph.NodeIDs() {
		n := v.graph.Nodes[id]
		d := math.Hypot(n.X-x, n.Y-y)
		if d <= NodeRadius && d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, best != ""
}

func initialRect(g *chimera.MapGraph) Rect {
	if g == nil || len(g.Nodes) == 0 {
		return Rect{Width: MinViewWidth, Height: MinViewHeight}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range g.Nodes {
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.X)
		maxY = math.Max(maxY, n.Y)
	}

	r := Rect{
		X:      minX - Padding,
		Y:      minY - Padding,
		Width:  maxX - minX + 2*Padding,
		Height: maxY - minY + 2*Padding,
	}

	cx, cy := r.Center()
	if r.Width < MinViewWidth {
		r.Width = MinViewWidth
		r.X = cx - r.Width/2
	}
	if r.Height < MinViewHeight {
		r.Height = MinViewHeight
		r.Y = cy - r.Height/2
	}
	return r
}
