// Package session defines the interface for hosting Chimera sessions
package session

//go:generate mockgen -destination=mock/mock_service.go -package=sessionmock github.com/KirkDiggler/chimera-protocol/internal/services/session Service

import (
	"context"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	orchestrator "github.com/KirkDiggler/chimera-protocol/internal/orchestrators/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/snapshots"
	"github.com/KirkDiggler/chimera-protocol/internal/terminal"
)

// Service hosts any number of independent sessions
type Service interface {
	// Lifecycle
	Create(ctx context.Context, input *CreateInput) (*CreateOutput, error)
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)
	Close(ctx context.Context, input *CloseInput) (*CloseOutput, error)

	// Player input
	Submit(ctx context.Context, input *SubmitInput) (*SubmitOutput, error)
	SelectNode(ctx context.Context, input *SelectNodeInput) (*SelectNodeOutput, error)

	// Facilitator controls
	SetEmergencyStop(ctx context.Context, input *SetEmergencyStopInput) (*SetEmergencyStopOutput, error)
	Resume(ctx context.Context, input *ResumeInput) (*ResumeOutput, error)
	RegenerateAvatar(ctx context.Context, input *RegenerateAvatarInput) (*RegenerateAvatarOutput, error)

	// Encounters and quests
	StartEncounter(ctx context.Context, input *StartEncounterInput) (*StartEncounterOutput, error)
	AdvanceTurn(ctx context.Context, input *AdvanceTurnInput) (*AdvanceTurnOutput, error)
	EndEncounter(ctx context.Context, input *EndEncounterInput) (*EndEncounterOutput, error)
	CompleteObjective(ctx context.Context, input *CompleteObjectiveInput) (*CompleteObjectiveOutput, error)

	// Map view
	RenderMap(ctx context.Context, input *RenderMapInput) (*RenderMapOutput, error)

	// Save slots
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)
	Load(ctx context.Context, input *LoadInput) (*LoadOutput, error)
	ListSaves(ctx context.Context, input *ListSavesInput) (*ListSavesOutput, error)
	DeleteSave(ctx context.Context, input *DeleteSaveInput) (*DeleteSaveOutput, error)
}

// View is what a client sees of one session
type View struct {
	SessionID string
	Status    orchestrator.Status
	Messages  []terminal.Message
	// Notice is consumed by the read that returns it
	Notice string
	// Mode is the host mode; "chimera" until the session asks to leave
	Mode       string
	ModeReason string
}

// CreateInput defines the request for creating a session
type CreateInput struct {
	// AutoPilot overrides the service default when set
	AutoPilot *bool
}

// CreateOutput defines the response for creating a session
type CreateOutput struct {
	SessionID string
}

// GetInput defines the request for reading a session
type GetInput struct {
	SessionID string
	// AfterMessageID returns only messages after this id when set
	AfterMessageID string
}

// GetOutput defines the response for reading a session
type GetOutput struct {
	View *View
}

// CloseInput defines the request for closing a session
type CloseInput struct {
	SessionID string
}

// CloseOutput defines the response for closing a session
type CloseOutput struct{}

// SubmitInput defines the request for submitting player input
type SubmitInput struct {
	SessionID string
	Input     string
}

// SubmitOutput defines the response for submitting player input
type SubmitOutput struct {
	Accepted bool
	// Notice explains why the input was refused
	Notice string
}

// SelectNodeInput defines the request for clicking a map node
type SelectNodeInput struct {
	SessionID string
	NodeID    string
}

// SelectNodeOutput defines the response for clicking a map node
type SelectNodeOutput struct{}

// SetEmergencyStopInput defines the request for toggling the emergency stop
type SetEmergencyStopInput struct {
	SessionID string
	Active    bool
}

// SetEmergencyStopOutput defines the response for toggling the emergency stop
type SetEmergencyStopOutput struct{}

// ResumeInput defines the request for resuming autonomous processing
type ResumeInput struct {
	SessionID string
}

// ResumeOutput defines the response for resuming autonomous processing
type ResumeOutput struct{}

// RegenerateAvatarInput defines the request for a new avatar
type RegenerateAvatarInput struct {
	SessionID string
}

// RegenerateAvatarOutput defines the response for a new avatar
type RegenerateAvatarOutput struct{}

// StartEncounterInput defines the request for starting combat
type StartEncounterInput struct {
	SessionID   string
	TemplateIDs []string
}

// StartEncounterOutput defines the response for starting combat
type StartEncounterOutput struct {
	Rolls     []orchestrator.InitiativeRoll
	TurnOrder []string
}

// AdvanceTurnInput defines the request for advancing combat
type AdvanceTurnInput struct {
	SessionID string
}

// AdvanceTurnOutput defines the response for advancing combat
type AdvanceTurnOutput struct {
	ActiveCombatantID string
	Round             int
}

// EndEncounterInput defines the request for ending combat
type EndEncounterInput struct {
	SessionID string
}

// EndEncounterOutput defines the response for ending combat
type EndEncounterOutput struct{}

// CompleteObjectiveInput defines the request for completing a quest objective
type CompleteObjectiveInput struct {
	SessionID      string
	QuestID        string
	ObjectiveIndex int
}

// CompleteObjectiveOutput defines the response for completing a quest objective
type CompleteObjectiveOutput struct {
	Quest chimera.Quest
}

// RenderMapInput defines the request for drawing the map view
type RenderMapInput struct {
	SessionID string
	Cols      int
	Rows      int
	// Zoom is applied before drawing; 0 leaves the view alone, a negative
	// value resets it
	Zoom float64
}

// RenderMapOutput defines the response for drawing the map view
type RenderMapOutput struct {
	MapID   string
	MapName string
	Lines   []string
}

// SaveInput defines the request for saving a session
type SaveInput struct {
	SessionID string
	Slot      string
}

// SaveOutput defines the response for saving a session
type SaveOutput struct {
	Summary *snapshots.Summary
}

// LoadInput defines the request for restoring a save. An empty SessionID
// restores into a new session.
type LoadInput struct {
	SessionID string
	Slot      string
}

// LoadOutput defines the response for restoring a save
type LoadOutput struct {
	SessionID string
}

// ListSavesInput defines the request for listing save slots
type ListSavesInput struct{}

// ListSavesOutput defines the response for listing save slots
type ListSavesOutput struct {
	Saves []*snapshots.Summary
}

// DeleteSaveInput defines the request for deleting a save slot
type DeleteSaveInput struct {
	Slot string
}

// DeleteSaveOutput defines the response for deleting a save slot
type DeleteSaveOutput struct{}
