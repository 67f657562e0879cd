// Package v1alpha1 handles the grpc service interface
package v1alpha1

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/services/session"
)

// HandlerConfig holds dependencies for the handler
type HandlerConfig struct {
	SessionService session.Service
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	if c.SessionService == nil {
		return errors.InvalidArgument("session service is required")
	}
	return nil
}

// Handler implements the Chimera session gRPC service
type Handler struct {
	sessions session.Service
}

var _ SessionServiceServer = (*Handler)(nil)

// NewHandler creates a new handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Handler{sessions: cfg.SessionService}, nil
}

// reply converts a result document or an error into the gRPC response
func reply(doc map[string]any, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := structpb.NewStruct(doc)
	if err != nil {
		return nil, errors.ToGRPCError(errors.Wrap(err, "failed to build response"))
	}
	return out, nil
}

// CreateSession starts a new session
func (h *Handler) CreateSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input := &session.CreateInput{}
	if v, ok := boolField(req, "autopilot"); ok {
		input.AutoPilot = &v
	}

	out, err := h.sessions.Create(ctx, input)
	if err != nil {
		return reply(nil, err)
	}
	return reply(map[string]any{"session_id": out.SessionID}, nil)
}

// GetSession returns the session view
func (h *Handler) GetSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id"); err != nil {
		return reply(nil, err)
	}

	out, err := h.sessions.Get(ctx, &session.GetInput{
		SessionID:      stringField(req, "session_id"),
		AfterMessageID: stringField(req, "after_message_id"),
	})
	if err != nil {
		return reply(nil, err)
	}

	doc, err := viewToStruct(out.View)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return doc, nil
}

// CloseSession disposes a session
func (h *Handler) CloseSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id"); err != nil {
		return reply(nil, err)
	}

	_, err := h.sessions.Close(ctx, &session.CloseInput{SessionID: stringField(req, "session_id")})
	return reply(map[string]any{}, err)
}

// Submit sends player input
func (h *Handler) Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id", "input"); err != nil {
		return reply(nil, err)
	}

	out, err := h.sessions.Submit(ctx, &session.SubmitInput{
		SessionID: stringField(req, "session_id"),
		Input:     stringField(req, "input"),
	})
	if err != nil {
		return reply(nil, err)
	}
	return reply(map[string]any{"accepted": out.Accepted, "notice": out.Notice}, nil)
}

// SelectNode moves the player to a clicked node
func (h *Handler) SelectNode(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id", "node_id"); err != nil {
		return reply(nil, err)
	}

	_, err := h.sessions.SelectNode(ctx, &session.SelectNodeInput{
		SessionID: stringField(req, "session_id"),
		NodeID:    stringField(req, "node_id"),
	})
	return reply(map[string]any{}, err)
}

// SetEmergencyStop toggles the emergency stop
func (h *Handler) SetEmergencyStop(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id"); err != nil {
		return reply(nil, err)
	}
	active, ok := boolField(req, "active")
	if !ok {
		return reply(nil, errors.InvalidArgument("active must be a boolean"))
	}

	_, err := h.sessions.SetEmergencyStop(ctx, &session.SetEmergencyStopInput{
		SessionID: stringField(req, "session_id"),
		Active:    active,
	})
	return reply(map[string]any{}, err)
}

// Resume restarts autonomous processing
func (h *Handler) Resume(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id"); err != nil {
		return reply(nil, err)
	}

	_, err := h.sessions.Resume(ctx, &session.ResumeInput{SessionID: stringField(req, "session_id")})
	return reply(map[string]any{}, err)
}

// RegenerateAvatar requests a new player avatar
func (h *Handler) RegenerateAvatar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id"); err != nil {
		return reply(nil, err)
	}

	_, err := h.sessions.RegenerateAvatar(ctx, &session.RegenerateAvatarInput{SessionID: stringField(req, "session_id")})
	return reply(map[string]any{}, err)
}

// StartEncounter begins combat against the given npc templates
func (h *Handler) StartEncounter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id"); err != nil {
		return reply(nil, err)
	}
	templateIDs := stringListField(req, "template_ids")
	if len(templateIDs) == 0 {
		return reply(nil, errors.InvalidArgument("template_ids is required"))
	}

	out, err := h.sessions.StartEncounter(ctx, &session.StartEncounterInput{
		SessionID:   stringField(req, "session_id"),
		TemplateIDs: templateIDs,
	})
	if err != nil {
		return reply(nil, err)
	}

	rolls := make([]any, 0, len(out.Rolls))
	for _, r := range out.Rolls {
		rolls = append(rolls, map[string]any{
			"combatant_id": r.CombatantID,
			"roll":         r.Roll,
			"modifier":     r.Modifier,
			"total":        r.Total,
		})
	}
	order := make([]any, 0, len(out.TurnOrder))
	for _, id := range out.TurnOrder {
		order = append(order, id)
	}
	return reply(map[string]any{"rolls": rolls, "turn_order": order}, nil)
}

// AdvanceTurn moves combat to the next combatant
func (h *Handler) AdvanceTurn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id"); err != nil {
		return reply(nil, err)
	}

	out, err := h.sessions.AdvanceTurn(ctx, &session.AdvanceTurnInput{SessionID: stringField(req, "session_id")})
	if err != nil {
		return reply(nil, err)
	}
	return reply(map[string]any{
		"active_combatant_id": out.ActiveCombatantID,
		"round":               out.Round,
	}, nil)
}

// EndEncounter returns the session to exploration
func (h *Handler) EndEncounter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id"); err != nil {
		return reply(nil, err)
	}

	_, err := h.sessions.EndEncounter(ctx, &session.EndEncounterInput{SessionID: stringField(req, "session_id")})
	return reply(map[string]any{}, err)
}

// CompleteObjective marks a quest objective done
func (h *Handler) CompleteObjective(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id", "quest_id"); err != nil {
		return reply(nil, err)
	}

	out, err := h.sessions.CompleteObjective(ctx, &session.CompleteObjectiveInput{
		SessionID:      stringField(req, "session_id"),
		QuestID:        stringField(req, "quest_id"),
		ObjectiveIndex: int(numberField(req, "objective_index")),
	})
	if err != nil {
		return reply(nil, err)
	}

	quest, err := toStruct(out.Quest)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"quest": structpb.NewStructValue(quest),
	}}, nil
}

// RenderMap draws the current map as text
func (h *Handler) RenderMap(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id"); err != nil {
		return reply(nil, err)
	}

	out, err := h.sessions.RenderMap(ctx, &session.RenderMapInput{
		SessionID: stringField(req, "session_id"),
		Cols:      int(numberField(req, "cols")),
		Rows:      int(numberField(req, "rows")),
		Zoom:      numberField(req, "zoom"),
	})
	if err != nil {
		return reply(nil, err)
	}

	lines := make([]any, 0, len(out.Lines))
	for _, l := range out.Lines {
		lines = append(lines, l)
	}
	return reply(map[string]any{
		"map_id":   out.MapID,
		"map_name": out.MapName,
		"lines":    lines,
	}, nil)
}

// SaveSession writes the session to a save slot
func (h *Handler) SaveSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "session_id", "slot"); err != nil {
		return reply(nil, err)
	}

	out, err := h.sessions.Save(ctx, &session.SaveInput{
		SessionID: stringField(req, "session_id"),
		Slot:      stringField(req, "slot"),
	})
	if err != nil {
		return reply(nil, err)
	}
	return reply(map[string]any{"save": summaryToMap(out.Summary)}, nil)
}

// LoadSession restores a save slot. Without a session_id a new session is
// hosted for it.
func (h *Handler) LoadSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "slot"); err != nil {
		return reply(nil, err)
	}

	out, err := h.sessions.Load(ctx, &session.LoadInput{
		SessionID: stringField(req, "session_id"),
		Slot:      stringField(req, "slot"),
	})
	if err != nil {
		return reply(nil, err)
	}
	return reply(map[string]any{"session_id": out.SessionID}, nil)
}

// ListSaves lists save slots, most recent first
func (h *Handler) ListSaves(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	out, err := h.sessions.ListSaves(ctx, &session.ListSavesInput{})
	if err != nil {
		return reply(nil, err)
	}

	saves := make([]any, 0, len(out.Saves))
	for _, s := range out.Saves {
		saves = append(saves, summaryToMap(s))
	}
	return reply(map[string]any{"saves": saves}, nil)
}

// DeleteSave removes a save slot
func (h *Handler) DeleteSave(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireString(req, "slot"); err != nil {
		return reply(nil, err)
	}

	_, err := h.sessions.DeleteSave(ctx, &session.DeleteSaveInput{Slot: stringField(req, "slot")})
	return reply(map[string]any{}, err)
}
