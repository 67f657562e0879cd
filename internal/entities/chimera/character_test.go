package chimera_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
)

type CharacterTestSuite struct {
	suite.Suite
	template *chimera.Template
}

func (s *CharacterTestSuite) SetupTest() {
	s.template = &chimera.Template{
		ID:    "street_samurai",
		Name:  "Street Samurai",
		Kind:  chimera.KindNPC,
		Stats: map[string]int{"STR": 14, "DEX": 16},
		MaxHP: 20,
		Armor: 13,
		Level: 2,
		Feats: []string{"Quick Draw"},
		Inventory: []chimera.Item{
			{
				ID:       "katana",
				Name:     "Mono-katana",
				Category: chimera.ItemCategoryWeapon,
				Combat:   &chimera.ItemCombat{Damage: "1d10"},
			},
		},
	}
}

func TestCharacterSuite(t *testing.T) {
	suite.Run(t, new(CharacterTestSuite))
}

func (s *CharacterTestSuite) TestInstantiateCopiesTemplate() {
	c := s.template.Instantiate("npc_1", "TP_N1")

	s.Equal("npc_1", c.GetID())
	s.Equal(chimera.KindNPC, c.GetType())
	s.Equal("TP_N1", c.GridPos)
	s.Equal(chimera.Pool{Current: 20, Max: 20}, c.HP)
	s.True(c.IsAlive)

	c.Stats["STR"] = 3
	c.Feats[0] = "changed"
	c.Inventory[0].Combat.Damage = "9d9"

	s.Equal(14, s.template.Stats["STR"])
	s.Equal("Quick Draw", s.template.Feats[0])
	s.Equal("1d10", s.template.Inventory[0].Combat.Damage)
}

func (s *CharacterTestSuite) TestHPClamped() {
	c := s.template.Instantiate("npc_1", "TP_N1")

	c.Heal(50)
	s.Equal(20, c.HP.Current)

	c.Damage(25)
	s.Equal(0, c.HP.Current)
	s.False(c.IsAlive)

	c.Heal(5)
	s.Equal(5, c.HP.Current)
	s.True(c.IsAlive)
}

func (s *CharacterTestSuite) TestAvatarHistoryBounded() {
	c := s.template.Instantiate("p", "TP_N1")
	for _, ref := range []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7"} {
		c.PushAvatar(ref)
		s.LessOrEqual(len(c.AvatarHistory), chimera.MaxAvatarHistory)
	}
	s.Equal("a7", c.Avatar)
	s.Equal([]string{"a3", "a4", "a5", "a6", "a7"}, c.AvatarHistory)
}

func (s *CharacterTestSuite) TestModifier() {
	c := &chimera.Character{Stats: map[string]int{"DEX": 16, "STR": 9, "INT": 10, "CHA": 7}}
	s.Equal(3, c.Modifier("DEX"))
	s.Equal(-1, c.Modifier("STR"))
	s.Equal(0, c.Modifier("INT"))
	s.Equal(-2, c.Modifier("CHA"))
	s.Equal(0, c.Modifier("WIS"))
}

func (s *CharacterTestSuite) TestTemplateValidate() {
	s.NoError(s.template.Validate())

	s.template.Kind = "robot"
	s.template.MaxHP = 0
	s.Error(s.template.Validate())
}

func (s *CharacterTestSuite) TestGameStateCloneKeepsPlayerIdentity() {
	player := s.template.Instantiate(chimera.PlayerCombatantID, "TP_N1")
	state := &chimera.GameState{
		Player:     player,
		Combatants: map[string]*chimera.Character{chimera.PlayerCombatantID: player},
		Quests:     []chimera.Quest{{ID: "q", Objectives: []chimera.Objective{{Description: "x"}}}},
	}

	clone := state.Clone()
	s.Same(clone.Player, clone.Combatants[chimera.PlayerCombatantID])
	s.NotSame(state.Player, clone.Player)

	clone.Quests[0].Objectives[0].Completed = true
	s.False(state.Quests[0].Objectives[0].Completed)
}
