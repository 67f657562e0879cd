package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/chimera-protocol/internal/clients/ai"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	orchestrator "github.com/KirkDiggler/chimera-protocol/internal/orchestrators/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/clock"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/idgen"
	"github.com/KirkDiggler/chimera-protocol/internal/prompts"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/maps"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/snapshots"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/templates"
)

// HostMode is the mode a session reports until it asks to leave Chimera
const HostMode = "chimera"

// Config holds the dependencies of a Manager
type Config struct {
	Maps      maps.Repository
	Templates templates.Repository
	DM        ai.TextGenerator
	PlayerAI  ai.TextGenerator
	Images    ai.ImageGenerator
	Prompts   *prompts.Set
	Store     snapshots.Repository

	Clock  clock.Clock
	IDGen  idgen.Generator
	Roller dice.Roller
	// Dispatch is handed to every controller; nil runs steps on goroutines
	Dispatch func(func())

	AutoPilot    bool
	AITimeout    time.Duration
	FallbackMode string
	// MaxSessions bounds hosted sessions; 0 means no limit
	MaxSessions int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Maps == nil {
		vb.RequiredField("Maps")
	}
	if c.Templates == nil {
		vb.RequiredField("Templates")
	}
	if c.DM == nil {
		vb.RequiredField("DM")
	}
	if c.Images == nil {
		vb.RequiredField("Images")
	}
	if c.Store == nil {
		vb.RequiredField("Store")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.IDGen == nil {
		vb.RequiredField("IDGen")
	}
	if c.MaxSessions < 0 {
		vb.Field("MaxSessions", "must not be negative")
	}
	return vb.Build()
}

// Manager implements Service
type Manager struct {
	cfg Config

	mu       sync.RWMutex
	sessions map[string]*hosted
	closed   bool
}

var _ Service = (*Manager)(nil)

// NewManager creates a session manager
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid session config")
	}

	return &Manager{
		cfg:      *cfg,
		sessions: make(map[string]*hosted),
	}, nil
}

// Create starts a new session and begins character creation
func (m *Manager) Create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	autoPilot := m.cfg.AutoPilot
	if input.AutoPilot != nil {
		autoPilot = *input.AutoPilot
	}

	h, err := m.host(autoPilot)
	if err != nil {
		return nil, err
	}

	if err := h.controller.Start(ctx); err != nil {
		m.drop(h.id)
		return nil, errors.Wrap(err, "failed to start session")
	}

	slog.InfoContext(ctx, "Session created", "session_id", h.id, "autopilot", autoPilot)
	return &CreateOutput{SessionID: h.id}, nil
}

// host builds and registers a session without starting it
func (m *Manager) host(autoPilot bool) (*hosted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errors.Unavailable("session manager is shut down")
	}
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, errors.QuotaExhausted("too many active sessions")
	}

	id := m.cfg.IDGen.Generate()
	if _, exists := m.sessions[id]; exists {
		return nil, errors.AlreadyExistsf("session %s already exists", id)
	}

	h, err := newHosted(id, m.cfg, autoPilot)
	if err != nil {
		return nil, err
	}
	m.sessions[id] = h
	return h, nil
}

func (m *Manager) drop(id string) {
	m.mu.Lock()
	h, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		h.controller.Dispose()
	}
}

func (m *Manager) lookup(id string) (*hosted, error) {
	if id == "" {
		return nil, errors.InvalidArgument("session_id is required")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.sessions[id]
	if !ok {
		return nil, errors.NotFoundf("session %s not found", id)
	}
	return h, nil
}

// Get returns the session view
func (m *Manager) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	h, err := m.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}

	return &GetOutput{View: h.view(input.AfterMessageID)}, nil
}

// Close disposes a session
func (m *Manager) Close(ctx context.Context, input *CloseInput) (*CloseOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := m.lookup(input.SessionID); err != nil {
		return nil, err
	}

	m.drop(input.SessionID)
	slog.InfoContext(ctx, "Session closed", "session_id", input.SessionID)
	return &CloseOutput{}, nil
}

// Shutdown disposes every session and refuses new ones
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*hosted)
	m.mu.Unlock()

	for _, h := range sessions {
		h.controller.Dispose()
	}
	slog.InfoContext(ctx, "Session manager shut down", "sessions", len(sessions))
}

// Submit hands player input to the session. Input the session refuses is
// reported through Accepted and Notice rather than as an error.
func (m *Manager) Submit(ctx context.Context, input *SubmitInput) (*SubmitOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	h, err := m.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}

	return h.submit(ctx, input.Input)
}

// SelectNode treats a map click as a MOVE to the clicked node
func (m *Manager) SelectNode(ctx context.Context, input *SelectNodeInput) (*SelectNodeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.NodeID == "" {
		return nil, errors.InvalidArgument("node_id is required")
	}
	h, err := m.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}

	if err := h.selectNode(ctx, input.NodeID); err != nil {
		return nil, err
	}
	return &SelectNodeOutput{}, nil
}

// SetEmergencyStop raises or clears the emergency stop
func (m *Manager) SetEmergencyStop(ctx context.Context, input *SetEmergencyStopInput) (*SetEmergencyStopOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	h, err := m.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}

	h.controller.SetEmergencyStop(ctx, input.Active)
	return &SetEmergencyStopOutput{}, nil
}

// Resume runs one processing step, restarting the loop after an emergency stop
func (m *Manager) Resume(_ context.Context, input *ResumeInput) (*ResumeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	h, err := m.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}
	if h.controller.Status().EmergencyStop {
		return nil, errors.FailedPrecondition("clear the emergency stop before resuming")
	}

	h.controller.Process()
	return &ResumeOutput{}, nil
}

// RegenerateAvatar requests a new avatar for the player
func (m *Manager) RegenerateAvatar(ctx context.Context, input *RegenerateAvatarInput) (*RegenerateAvatarOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	h, err := m.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}

	if err := h.controller.RegenerateAvatar(ctx); err != nil {
		return nil, err
	}
	return &RegenerateAvatarOutput{}, nil
}

// StartEncounter spawns hostiles and rolls initiative
func (m *Manager) StartEncounter(ctx context.Context, input *StartEncounterInput) (*StartEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	h, err := m.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}

	out, err := h.controller.StartEncounter(ctx, &orchestrator.StartEncounterInput{TemplateIDs: input.TemplateIDs})
	if err != nil {
		return nil, err
	}
	return &StartEncounterOutput{Rolls: out.Rolls, TurnOrder: out.TurnOrder}, nil
}

// AdvanceTurn moves combat to the next living combatant
func (m *Manager) AdvanceTurn(ctx context.Context, input *AdvanceTurnInput) (*AdvanceTurnOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	h, err := m.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}

	out, err := h.controller.AdvanceTurn(ctx)
	if err != nil {
		return nil, err
	}
	return &AdvanceTurnOutput{ActiveCombatantID: out.ActiveCombatantID, Round: out.Round}, nil
}

// EndEncounter returns the session to exploration
func (m *Manager) EndEncounter(ctx context.Context, input *EndEncounterInput) (*EndEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	h, err := m.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}

	if err := h.controller.EndEncounter(ctx); err != nil {
		return nil, err
	}
	return &EndEncounterOutput{}, nil
}

// CompleteObjective marks a quest objective done
func (m *Manager) CompleteObjective(ctx context.Context, input *CompleteObjectiveInput) (*CompleteObjectiveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	h, err := m.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}

	out, err := h.controller.CompleteObjective(ctx, &orchestrator.CompleteObjectiveInput{
		QuestID:        input.QuestID,
		ObjectiveIndex: input.ObjectiveIndex,
	})
	if err != nil {
		return nil, err
	}
	return &CompleteObjectiveOutput{Quest: out.Quest}, nil
}

// RenderMap draws the current map at the requested size
func (m *Manager) RenderMap(_ context.Context, input *RenderMapInput) (*RenderMapOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidatePositive("cols", input.Cols, vb)
	errors.ValidatePositive("rows", input.Rows, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}
	h, err := m.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}

	return h.render(input.Cols, input.Rows, input.Zoom), nil
}

// Save encodes the session and writes it to a slot
func (m *Manager) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := snapshots.ValidateSlot(input.Slot); err != nil {
		return nil, err
	}
	h, err := m.lookup(input.SessionID)
	if err != nil {
		return nil, err
	}

	snap, err := h.controller.Snapshot()
	if err != nil {
		return nil, err
	}
	data, err := orchestrator.Encode(snap)
	if err != nil {
		return nil, err
	}

	out, err := m.cfg.Store.Save(ctx, &snapshots.SaveInput{
		Slot:      input.Slot,
		SessionID: h.id,
		Data:      data,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save slot %s", input.Slot)
	}

	slog.InfoContext(ctx, "Session saved", "session_id", h.id, "slot", input.Slot, "size", len(data))
	return &SaveOutput{Summary: out.Summary}, nil
}

// Load restores a slot into a session, hosting a new one when no session is named
func (m *Manager) Load(ctx context.Context, input *LoadInput) (*LoadOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := snapshots.ValidateSlot(input.Slot); err != nil {
		return nil, err
	}

	var h *hosted
	if input.SessionID != "" {
		var err error
		if h, err = m.lookup(input.SessionID); err != nil {
			return nil, err
		}
	}

	out, err := m.cfg.Store.Load(ctx, &snapshots.LoadInput{Slot: input.Slot})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load slot %s", input.Slot)
	}
	snap, err := orchestrator.Decode(out.Record.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "slot %s holds an unreadable snapshot", input.Slot)
	}

	fresh := h == nil
	if fresh {
		if h, err = m.host(m.cfg.AutoPilot); err != nil {
			return nil, err
		}
	}

	if err := h.controller.Restore(ctx, snap); err != nil {
		if fresh {
			m.drop(h.id)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "Session loaded", "session_id", h.id, "slot", input.Slot, "saved_by", snap.SessionID)
	return &LoadOutput{SessionID: h.id}, nil
}

// ListSaves returns save slot summaries, most recent first
func (m *Manager) ListSaves(ctx context.Context, _ *ListSavesInput) (*ListSavesOutput, error) {
	out, err := m.cfg.Store.List(ctx, &snapshots.ListInput{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list saves")
	}
	return &ListSavesOutput{Saves: out.Summaries}, nil
}

// DeleteSave removes a save slot
func (m *Manager) DeleteSave(ctx context.Context, input *DeleteSaveInput) (*DeleteSaveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := snapshots.ValidateSlot(input.Slot); err != nil {
		return nil, err
	}

	if _, err := m.cfg.Store.Delete(ctx, &snapshots.DeleteInput{Slot: input.Slot}); err != nil {
		return nil, errors.Wrapf(err, "failed to delete slot %s", input.Slot)
	}
	return &DeleteSaveOutput{}, nil
}

// refusal reports whether err is the controller turning input away
func refusal(err error) bool {
	return errors.IsFailedPrecondition(err) || errors.IsInvalidArgument(err)
}
