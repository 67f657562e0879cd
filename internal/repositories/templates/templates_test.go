package templates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/templates"
)

type TemplatesTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo templates.Repository
}

func (s *TemplatesTestSuite) SetupTest() {
	s.ctx = context.Background()
	repo, err := templates.LoadBuiltin()
	s.Require().NoError(err)
	s.repo = repo
}

func TestTemplatesSuite(t *testing.T) {
	suite.Run(t, new(TemplatesTestSuite))
}

func (s *TemplatesTestSuite) TestListByKind() {
	players, err := s.repo.List(s.ctx, &templates.ListInput{Kind: chimera.KindPlayer})
	s.Require().NoError(err)
	s.Len(players.Templates, 3)
	for _, t := range players.Templates {
		s.NotEmpty(t.Archetype)
	}

	npcs, err := s.repo.List(s.ctx, &templates.ListInput{Kind: chimera.KindNPC})
	s.Require().NoError(err)
	s.Len(npcs.Templates, 3)

	all, err := s.repo.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all.Templates, 6)
}

func (s *TemplatesTestSuite) TestGet() {
	out, err := s.repo.Get(s.ctx, &templates.GetInput{TemplateID: "corp_security"})
	s.Require().NoError(err)
	s.Equal(16, out.Template.MaxHP)

	_, err = s.repo.Get(s.ctx, &templates.GetInput{TemplateID: "dragon"})
	s.True(errors.IsNotFound(err))
}

func (s *TemplatesTestSuite) TestParseRejectsInvalid() {
	testCases := []struct {
		name string
		doc  string
	}{
		{
			name: "unknown kind",
			doc:  "templates:\n  - {id: a, name: A, kind: robot, max_hp: 1, level: 1}\n",
		},
		{
			name: "duplicate id",
			doc:  "templates:\n  - {id: a, name: A, kind: npc, max_hp: 1, level: 1}\n  - {id: a, name: B, kind: npc, max_hp: 1, level: 1}\n",
		},
		{
			name: "bad category",
			doc:  "templates:\n  - {id: a, name: A, kind: npc, max_hp: 1, level: 1, inventory: [{id: x, name: X, category: relic}]}\n",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := templates.Parse([]byte(tc.doc))
			s.Require().Error(err)
			s.True(errors.IsDataIntegrity(err))
		})
	}
}
