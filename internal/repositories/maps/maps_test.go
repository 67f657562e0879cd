package maps_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/maps"
)

type MapsRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo *maps.InMemoryRepository
}

func (s *MapsRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	repo, err := maps.LoadBuiltin()
	s.Require().NoError(err)
	s.repo = repo
}

func TestMapsRepositorySuite(t *testing.T) {
	suite.Run(t, new(MapsRepositoryTestSuite))
}

func (s *MapsRepositoryTestSuite) TestBuiltinStartMap() {
	out, err := s.repo.Get(s.ctx, &maps.GetInput{MapID: maps.StartMapID})
	s.Require().NoError(err)

	g := out.Map
	s.Equal("TP_N1", g.DefaultEntryNodeID)

	n1, ok := g.Node("TP_N1")
	s.Require().True(ok)
	s.ElementsMatch([]string{"TP_N3", "TP_KJ1"}, n1.Connections)
	s.True(n1.IsStartNode)

	n2, ok := g.Node("TP_N2")
	s.Require().True(ok)
	s.False(n2.ConnectsTo("TP_N1"))
	s.False(n1.ConnectsTo("TP_N2"))

	n3, ok := g.Node("TP_N3")
	s.Require().True(ok)
	s.NotEmpty(n3.InteractableObjectIDs)
}

func (s *MapsRepositoryTestSuite) TestBuiltinExitsResolve() {
	out, err := s.repo.List(s.ctx, &maps.ListInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Maps, 2)

	for _, g := range out.Maps {
		for _, id := range g.NodeIDs() {
			node := g.Nodes[id]
			if !node.IsExitNode {
				continue
			}
			_, err := s.repo.Get(s.ctx, &maps.GetInput{MapID: node.ExitLeadsToMapID})
			s.NoError(err, "exit %s on %s", id, g.ID)
		}
	}
}

func (s *MapsRepositoryTestSuite) TestGetErrors() {
	_, err := s.repo.Get(s.ctx, &maps.GetInput{MapID: "nope"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, &maps.GetInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Get(s.ctx, nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *MapsRepositoryTestSuite) TestLoadFSRejectsDanglingConnection() {
	fsys := fstest.MapFS{
		"broken.yaml": &fstest.MapFile{Data: []byte(`
id: BROKEN
name: Broken
default_entry_node_id: A
nodes:
  A:
    connections: [B]
`)},
	}

	_, err := maps.LoadFS(fsys)
	s.Require().Error(err)
	s.True(errors.IsDataIntegrity(err))
}

func (s *MapsRepositoryTestSuite) TestLoadFSRejectsMalformedYAML() {
	fsys := fstest.MapFS{
		"bad.yaml": &fstest.MapFile{Data: []byte("nodes: [unterminated")},
	}

	_, err := maps.LoadFS(fsys)
	s.Require().Error(err)
	s.True(errors.IsDataIntegrity(err))
}

func (s *MapsRepositoryTestSuite) TestNewInMemoryDuplicate() {
	g := &chimera.MapGraph{
		ID:                 "X",
		DefaultEntryNodeID: "A",
		Nodes:              map[string]*chimera.MapNode{"A": {ID: "A"}},
	}
	_, err := maps.NewInMemory(g, g)
	s.Error(err)
}
