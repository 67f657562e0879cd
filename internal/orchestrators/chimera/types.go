package chimera

import (
	"context"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/terminal"
)

// CreationState is the position in the character creation pipeline
type CreationState string

// Creation states, in pipeline order
const (
	CreationIdle                     CreationState = "IDLE"
	CreationAwaitingArchetypes       CreationState = "AWAITING_ARCHETYPES"
	CreationAwaitingPlayerChoice     CreationState = "AWAITING_PLAYER_CHOICE"
	CreationGeneratingAvatar         CreationState = "GENERATING_AVATAR"
	CreationAwaitingIncitingIncident CreationState = "AWAITING_INCITING_INCIDENT"
	CreationComplete                 CreationState = "CREATION_COMPLETE"
)

// TurnBudget is the number of autonomous turns allowed before the
// facilitator must approve continuation
const TurnBudget = 5

// DefaultAvatarRef is used whenever avatar generation fails
const DefaultAvatarRef = "builtin://avatars/chimera-default.png"

// Fixed system texts
const (
	MsgInitialized  = "Chimera Protocol Initialized. Establishing neural link with the simulation..."
	MsgCheckpoint   = "FACILITATOR CHECKPOINT: the autonomous turn budget is spent. Reply Y to continue, N to halt the simulation, or type a new directive."
	MsgOutcomePend  = "[Outcome pending: the simulation lost the narrative thread. Try again in a moment.]"
	MsgAvatarQuota  = "Avatar generation quota exhausted (rate limited). Using the default avatar."
	MsgAvatarFailed = "Avatar generation failed. Using the default avatar."
	MsgDMQuota      = "The DM is rate limited (quota exhausted). The story will resume shortly."
	MsgDMFailed     = "The DM could not be reached."
	MsgHelp         = "Commands: MOVE <node>, EXIT (leave through an exit node), ATTACK <target> (combat), FLEE (combat), HELP. Anything else is narrated by the DM."
)

// Display receives the session's output
type Display interface {
	Append(sender terminal.Sender, text string) (terminal.Message, bool)
	Notice(text string)
}

// ModeSwitcher receives requests to leave Chimera mode
type ModeSwitcher interface {
	RequestModeChange(ctx context.Context, mode string, reason string)
}

// Status is a read-only view of the controller
type Status struct {
	SessionID        string
	Creation         CreationState
	Busy             bool
	EmergencyStop    bool
	Halted           bool
	AvatarInProgress bool
	// State is a deep copy; nil until creation completes
	State *chimera.GameState
}

// StartEncounterInput contains parameters for starting combat
type StartEncounterInput struct {
	TemplateIDs []string
}

// InitiativeRoll is one combatant's initiative result
type InitiativeRoll struct {
	CombatantID string
	Roll        int
	Modifier    int
	Total       int
}

// StartEncounterOutput contains the rolled turn order
type StartEncounterOutput struct {
	Rolls     []InitiativeRoll
	TurnOrder []string
}

// AdvanceTurnOutput contains the combatant whose turn it now is
type AdvanceTurnOutput struct {
	ActiveCombatantID string
	Round             int
}

// CompleteObjectiveInput identifies a quest objective
type CompleteObjectiveInput struct {
	QuestID        string
	ObjectiveIndex int
}

// CompleteObjectiveOutput reports the quest after the update
type CompleteObjectiveOutput struct {
	Quest chimera.Quest
}
