package chimera

// GameMode is the mode tag of a session
type GameMode string

// Game modes
const (
	ModeExploration       GameMode = "EXPLORATION"
	ModeCombat            GameMode = "COMBAT"
	ModeDialogue          GameMode = "DIALOGUE"
	ModeCutscene          GameMode = "CUTSCENE"
	ModeCharacterCreation GameMode = "CHARACTER_CREATION"
)

// WorldState carries the known narrative flags as fields plus an open
// extension map for anything else the narrative wants to remember.
type WorldState struct {
	PlayerArchetype       string            `json:"player_archetype,omitempty"`
	PlayerBackstory       string            `json:"player_backstory,omitempty"`
	ChimeraTurnCount      int               `json:"chimera_turn_count"`
	IsAwaitingFacilitator bool              `json:"is_awaiting_facilitator"`
	Extra                 map[string]string `json:"extra,omitempty"`
}

// CombatLogEntry is one line of the combat log
type CombatLogEntry struct {
	Round   int    `json:"round"`
	ActorID string `json:"actor_id,omitempty"`
	Text    string `json:"text"`
}

// GameState is the state of a running session. It exists only after
// character creation completes.
type GameState struct {
	Mode                   GameMode              `json:"mode"`
	Player                 *Character            `json:"player"`
	Combatants             map[string]*Character `json:"combatants"`
	TurnOrder              []string              `json:"turn_order"`
	ActiveTurnIndex        int                   `json:"active_turn_index"`
	Round                  int                   `json:"round,omitempty"`
	World                  WorldState            `json:"world_state"`
	IsAwaitingPlayerAction bool                  `json:"is_awaiting_player_action"`
	Narrative              string                `json:"narrative"`
	CurrentMapID           string                `json:"current_map_id"`
	CurrentNodeID          string                `json:"current_node_id"`
	InteractableObjectIDs  []string              `json:"interactable_object_ids"`
	Quests                 []Quest               `json:"quests"`
	CombatLog              []CombatLogEntry      `json:"combat_log"`
}

// ActiveCombatantID returns the id whose turn it is, or "" outside of a turn order
func (s *GameState) ActiveCombatantID() string {
	if len(s.TurnOrder) == 0 {
		return ""
	}
	return s.TurnOrder[s.ActiveTurnIndex%len(s.TurnOrder)]
}

// Clone returns a deep copy. The player entry in Combatants points at the
// cloned Player.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.Player = s.Player.Clone()
	out.Combatants = make(map[string]*Character, len(s.Combatants))
	for id, c := range s.Combatants {
		if c == s.Player {
			out.Combatants[id] = out.Player
			continue
		}
		out.Combatants[id] = c.Clone()
	}
	out.TurnOrder = append([]string(nil), s.TurnOrder...)
	out.InteractableObjectIDs = append([]string(nil), s.InteractableObjectIDs...)
	out.CombatLog = append([]CombatLogEntry(nil), s.CombatLog...)
	out.Quests = make([]Quest, len(s.Quests))
	for i, q := range s.Quests {
		out.Quests[i] = q.Clone()
	}
	if s.World.Extra != nil {
		out.World.Extra = make(map[string]string, len(s.World.Extra))
		for k, v := range s.World.Extra {
			out.World.Extra[k] = v
		}
	}
	return &out
}
