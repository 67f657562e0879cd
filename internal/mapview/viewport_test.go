package mapview_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/mapview"
)

type ViewportTestSuite struct {
	suite.Suite
	graph *chimera.MapGraph
	vp    *mapview.Viewport
}

func (s *ViewportTestSuite) SetupTest() {
	s.graph = &chimera.MapGraph{
		ID:                 "M",
		DefaultEntryNodeID: "A",
		Nodes: map[string]*chimera.MapNode{
			"A": {ID: "A", X: 0, Y: 0, Connections: []string{"B", "C"}},
			"B": {ID: "B", X: 200, Y: 0, Connections: []string{"A"}},
			"C": {ID: "C", X: 0, Y: 100, Connections: []string{"A"}},
		},
	}
	s.vp = mapview.New()
	s.vp.SetGraph(s.graph)
}

func TestViewportSuite(t *testing.T) {
	suite.Run(t, new(ViewportTestSuite))
}

func (s *ViewportTestSuite) TestInitialRectBoundsNodesWithPadding() {
	r := s.vp.Initial()
	s.Equal(-mapview.Padding, r.X)
	s.Equal(-mapview.Padding, r.Y)
	s.Equal(200+2*mapview.Padding, r.Width)
	s.Equal(100+2*mapview.Padding, r.Height)
}

func (s *ViewportTestSuite) TestInitialRectFloor() {
	vp := mapview.New()
	vp.SetGraph(&chimera.MapGraph{
		ID:    "tiny",
		Nodes: map[string]*chimera.MapNode{"A": {ID: "A", X: 10, Y: 10}},
	})

	r := vp.Initial()
	s.Equal(mapview.MinViewWidth, r.Width)
	s.Equal(mapview.MinViewHeight, r.Height)
	cx, cy := r.Center()
	s.InDelta(10, cx, 1e-9)
	s.InDelta(10, cy, 1e-9)
}

func (s *ViewportTestSuite) TestZoomClamped() {
	initial := s.vp.Initial()

	for i := 0; i < 50; i++ {
		s.vp.Wheel(1)
		s.LessOrEqual(s.vp.View().Width, initial.Width*mapview.MaxZoom+1e-9)
	}
	s.InDelta(initial.Width*mapview.MaxZoom, s.vp.View().Width, 1e-9)

	for i := 0; i < 80; i++ {
		s.vp.ZoomIn()
		s.GreaterOrEqual(s.vp.View().Width, initial.Width/mapview.MaxZoom-1e-9)
	}
	s.InDelta(initial.Width/mapview.MaxZoom, s.vp.View().Width, 1e-9)
}

func (s *ViewportTestSuite) TestZoomKeepsCenterAndAspect() {
	before := s.vp.View()
	bx, by := before.Center()

	s.vp.Zoom(1.5)

	after := s.vp.View()
	ax, ay := after.Center()
	s.InDelta(bx, ax, 1e-9)
	s.InDelta(by, ay, 1e-9)
	s.InDelta(before.Height/before.Width, after.Height/after.Width, 1e-9)
	s.InDelta(before.Width*1.5, after.Width, 1e-9)
}

func (s *ViewportTestSuite) TestResetRestoresExactInitial() {
	s.vp.ZoomIn()
	s.vp.Wheel(-3)
	s.vp.ZoomOut()
	s.vp.Wheel(2)
	s.vp.Zoom(7)

	s.vp.Reset()
	s.Equal(s.vp.Initial(), s.vp.View())
}

func (s *ViewportTestSuite) TestWheelZeroIsNoop() {
	before := s.vp.View()
	s.vp.Wheel(0)
	s.Equal(before, s.vp.View())
}

func (s *ViewportTestSuite) TestEdgesDeduplicated() {
	edges := s.vp.Edges()
	s.Require().Len(edges, 2)
	s.Equal("A", edges[0].Source.ID)
	s.Equal("B", edges[0].Target.ID)
	s.Equal("A", edges[1].Source.ID)
	s.Equal("C", edges[1].Target.ID)
}

func (s *ViewportTestSuite) TestClick() {
	s.False(s.vp.Click("A"), "no handler bound")

	var clicked []string
	s.vp.OnNodeClick(func(id string) { clicked = append(clicked, id) })

	s.True(s.vp.Click("B"))
	s.False(s.vp.Click("Z"))
	s.Equal([]string{"B"}, clicked)

	id, ok := s.vp.HitTest(198, 3)
	s.True(ok)
	s.Equal("B", id)

	_, ok = s.vp.HitTest(100, 50)
	s.False(ok)
}

func (s *ViewportTestSuite) TestEmptyGraphPlaceholder() {
	vp := mapview.New()
	s.True(vp.Empty())

	out := strings.Join(vp.Render(40, 5), "\n")
	s.Contains(out, mapview.Placeholder)

	vp.SetGraph(&chimera.MapGraph{ID: "empty"})
	s.True(vp.Empty())
	s.Nil(vp.Edges())
}

func (s *ViewportTestSuite) TestRenderMarksCurrentNode() {
	s.vp.SetCurrentNode("C")
	out := s.vp.Render(60, 20)
	s.Len(out, 20)

	joined := strings.Join(out, "\n")
	s.Contains(joined, string(mapview.GlyphCurrent))
	s.Contains(joined, "B")

	s.Equal(byte(mapview.GlyphCurrent), out[16][6])

	id, ok := s.vp.NodeAtCell(6, 3, 60, 20)
	s.True(ok)
	s.Equal("A", id)

	_, ok = s.vp.NodeAtCell(30, 10, 60, 20)
	s.False(ok)
}
