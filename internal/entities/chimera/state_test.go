package chimera_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/testutils"
)

type GameStateTestSuite struct {
	suite.Suite
	state *chimera.GameState
}

func (s *GameStateTestSuite) SetupTest() {
	s.state = testutils.NewTestGameState()
}

func TestGameStateSuite(t *testing.T) {
	suite.Run(t, new(GameStateTestSuite))
}

func (s *GameStateTestSuite) TestActiveCombatantID() {
	s.Equal(chimera.PlayerCombatantID, s.state.ActiveCombatantID())

	s.state.TurnOrder = []string{"npc_1", chimera.PlayerCombatantID}
	s.state.ActiveTurnIndex = 2
	s.Equal("npc_1", s.state.ActiveCombatantID())

	s.state.TurnOrder = nil
	s.Empty(s.state.ActiveCombatantID())
}

func (s *GameStateTestSuite) TestCloneIsDeep() {
	s.state.Quests = []chimera.Quest{{
		ID:         "q",
		Objectives: []chimera.Objective{{Description: "find the fixer"}},
	}}
	s.state.World.Extra = map[string]string{"alarm": "off"}

	clone := s.state.Clone()
	s.Require().NotNil(clone)
	s.Same(clone.Player, clone.Combatants[chimera.PlayerCombatantID])
	s.NotSame(s.state.Player, clone.Player)

	clone.Player.Damage(5)
	clone.Quests[0].Objectives[0].Completed = true
	clone.World.Extra["alarm"] = "on"
	clone.InteractableObjectIDs[0] = "changed"

	s.Equal(18, s.state.Player.HP.Current)
	s.False(s.state.Quests[0].Objectives[0].Completed)
	s.Equal("off", s.state.World.Extra["alarm"])
	s.Equal("obj_public_terminal", s.state.InteractableObjectIDs[0])
}

func (s *GameStateTestSuite) TestCloneNil() {
	var state *chimera.GameState
	s.Nil(state.Clone())
}
