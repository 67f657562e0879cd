package chimera

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// SnapshotVersion is the version written by Encode and accepted by Decode
const SnapshotVersion = 1

// Snapshot is a serializable copy of a session after character creation
type Snapshot struct {
	Version   int                `json:"version"`
	SessionID string             `json:"session_id"`
	SavedAt   time.Time          `json:"saved_at"`
	State     *chimera.GameState `json:"state"`
}

// Snapshot captures the current game state
func (c *Controller) Snapshot() (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil || c.creation != CreationComplete {
		return nil, errors.FailedPrecondition("nothing to save before character creation completes")
	}
	return &Snapshot{
		Version:   SnapshotVersion,
		SessionID: c.cfg.SessionID,
		SavedAt:   c.cfg.Clock.Now().UTC(),
		State:     c.state.Clone(),
	}, nil
}

// Encode serializes a snapshot
func Encode(snap *Snapshot) ([]byte, error) {
	if snap == nil || snap.State == nil {
		return nil, errors.InvalidArgument("snapshot state is required")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode snapshot")
	}
	return data, nil
}

// Decode parses a snapshot produced by Encode. Malformed input is reported
// as InvalidArgument with the parser message under the "parse_error" meta key.
func Decode(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.InvalidArgument("malformed snapshot").WithMeta("parse_error", err.Error())
	}
	if snap.Version != SnapshotVersion {
		return nil, errors.InvalidArgumentf("unsupported snapshot version %d", snap.Version)
	}
	if err := validateSnapshotState(snap.State); err != nil {
		return nil, err
	}

	// the player is one object in both places
	if snap.State.Combatants == nil {
		snap.State.Combatants = make(map[string]*chimera.Character)
	}
	snap.State.Combatants[chimera.PlayerCombatantID] = snap.State.Player
	return &snap, nil
}

func validateSnapshotState(s *chimera.GameState) error {
	vb := errors.NewValidationBuilder()
	if s == nil {
		vb.RequiredField("state")
		return vb.Build()
	}
	if s.Player == nil {
		vb.RequiredField("state.player")
	} else {
		hp := s.Player.HP
		if hp.Max <= 0 {
			vb.Field("state.player.hp.max", "must be positive")
		}
		if hp.Current < 0 || hp.Current > hp.Max {
			vb.Fieldf("state.player.hp.current", "%d is outside [0, %d]", hp.Current, hp.Max)
		}
	}
	switch w := s.World; {
	case w.ChimeraTurnCount < 0:
		vb.Field("state.world.chimera_turn_count", "must not be negative")
	case w.ChimeraTurnCount >= TurnBudget && !w.IsAwaitingFacilitator:
		// a spent budget always leaves the checkpoint open
		vb.Fieldf("state.world.is_awaiting_facilitator", "must be set once %d turns have run", TurnBudget)
	}
	errors.ValidateRequired("state.current_map_id", s.CurrentMapID, vb)
	errors.ValidateRequired("state.current_node_id", s.CurrentNodeID, vb)
	switch s.Mode {
	case chimera.ModeExploration, chimera.ModeCombat, chimera.ModeDialogue, chimera.ModeCutscene:
	default:
		vb.Field("state.mode", fmt.Sprintf("unsupported mode %q", s.Mode))
	}
	return vb.Build()
}

// Restore replaces the session with a saved snapshot. The saved map and node
// must still exist. Pending timers are dropped and the loop resumes from
// whatever the snapshot was waiting on.
func (c *Controller) Restore(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.InvalidArgument("snapshot is required")
	}
	if err := validateSnapshotState(snap.State); err != nil {
		return err
	}

	graph, err := c.loadMap(ctx, snap.State.CurrentMapID)
	if err != nil {
		return errors.Wrapf(err, "failed to load map %s", snap.State.CurrentMapID)
	}
	if _, ok := graph.Node(snap.State.CurrentNodeID); !ok {
		return errors.DataIntegrityf("node %s is not on map %s", snap.State.CurrentNodeID, graph.ID)
	}

	state := snap.State.Clone()
	state.Player.GridPos = state.CurrentNodeID
	if state.Combatants == nil {
		state.Combatants = make(map[string]*chimera.Character)
	}
	state.Combatants[chimera.PlayerCombatantID] = state.Player

	var ob outbox
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return errors.FailedPrecondition("session disposed")
	}
	c.cancelTimersLocked()
	c.generation++
	c.state = state
	c.graph = graph
	c.creation = CreationComplete
	c.progress = creationProgress{archetypes: true, playerChoice: true, avatar: true, avatarDone: true, incitingIncident: true}
	c.busy = false
	c.thinking = false
	c.halted = false
	c.pendingAction = ""
	c.archetype = nil
	c.backstory = state.World.PlayerBackstory
	c.avatarRef = state.Player.Avatar
	c.dmHistory = nil

	ob.system(fmt.Sprintf("Session restored: %s at %s (%s).", state.Player.Name, graph.Name, state.CurrentNodeID))
	switch {
	case state.World.IsAwaitingFacilitator:
		ob.system(MsgCheckpoint)
	case state.IsAwaitingPlayerAction:
		c.scheduleAutoPilotLocked()
	default:
		c.scheduleProcessLocked(c.cfg.TurnDelay)
	}
	c.mu.Unlock()

	slog.InfoContext(ctx, "Session restored",
		"session_id", c.cfg.SessionID,
		"snapshot_session_id", snap.SessionID,
		"map_id", graph.ID,
		"node_id", state.CurrentNodeID,
	)
	c.flush(ctx, &ob)
	return nil
}
