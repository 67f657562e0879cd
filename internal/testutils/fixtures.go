package testutils

import (
	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
)

// TestPlayerName is the name of the fixture player
const TestPlayerName = "Vex"

// NewTestGameState returns an exploration state on the plaza entry node
func NewTestGameState() *chimera.GameState {
	player := &chimera.Character{
		ID:            chimera.PlayerCombatantID,
		Name:          TestPlayerName,
		Kind:          chimera.KindPlayer,
		TemplateID:    "player_netrunner",
		Avatar:        "builtin://avatars/chimera-default.png",
		AvatarHistory: []string{"builtin://avatars/chimera-default.png"},
		Stats:         map[string]int{"DEX": 14, "INT": 17},
		HP:            chimera.Pool{Current: 18, Max: 18},
		Armor:         11,
		Level:         1,
		XP:            chimera.Progress{Next: 1000},
		IsAlive:       true,
		GridPos:       "TP_N1",
	}

	return &chimera.GameState{
		Mode:       chimera.ModeExploration,
		Player:     player,
		Combatants: map[string]*chimera.Character{player.ID: player},
		TurnOrder:  []string{player.ID},
		World: chimera.WorldState{
			PlayerArchetype: "Netrunner",
			PlayerBackstory: "Burned a corp and kept the keys.",
		},
		IsAwaitingPlayerAction: true,
		Narrative:              "Rain needles the plaza.",
		CurrentMapID:           "TP_MAP",
		CurrentNodeID:          "TP_N1",
		InteractableObjectIDs:  []string{"obj_public_terminal"},
		Quests:                 []chimera.Quest{},
		CombatLog:              []chimera.CombatLogEntry{},
	}
}
