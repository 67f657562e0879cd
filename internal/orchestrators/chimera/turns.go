package chimera

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/KirkDiggler/chimera-protocol/internal/clients/ai"
	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/prompts"
	"github.com/KirkDiggler/chimera-protocol/internal/terminal"
)

// nextTurnLocked claims a game turn if one may run now
func (c *Controller) nextTurnLocked(ctx context.Context) func() {
	s := c.state
	if s == nil || c.emergencyStop || c.halted || c.busy || c.thinking {
		return nil
	}
	if s.IsAwaitingPlayerAction || s.World.IsAwaitingFacilitator || s.Mode == chimera.ModeCombat {
		return nil
	}

	c.busy = true
	action := c.pendingAction
	c.pendingAction = ""
	prompt := c.turnPromptLocked(action)
	history := append([]ai.Turn(nil), c.dmHistory...)

	return func() { c.runTurn(ctx, s, prompt, history) }
}

func (c *Controller) runTurn(ctx context.Context, s *chimera.GameState, prompt string, history []ai.Turn) {
	text, genErr := c.generate(c.cfg.DM, c.cfg.Prompts.DM.System, history, prompt)

	var ob outbox
	c.mu.Lock()
	c.busy = false
	if !c.alive || c.state != s {
		// disposed or replaced by a restore while the call was in flight
		c.mu.Unlock()
		return
	}

	if genErr != nil {
		ob.system(serviceFailureMessage(genErr, MsgDMQuota, MsgDMFailed))
		text = MsgOutcomePend
	} else {
		c.rememberDMLocked(prompt, text)
	}
	s.Narrative = text
	ob.say(terminal.SenderDM, text)

	s.IsAwaitingPlayerAction = true
	s.World.ChimeraTurnCount++
	checkpoint := false
	if s.World.ChimeraTurnCount >= TurnBudget && !s.World.IsAwaitingFacilitator {
		s.World.IsAwaitingFacilitator = true
		checkpoint = true
		ob.system(MsgCheckpoint)
	} else {
		c.scheduleAutoPilotLocked()
	}
	count := s.World.ChimeraTurnCount
	c.mu.Unlock()

	slog.InfoContext(ctx, "Game turn complete",
		"session_id", c.cfg.SessionID,
		"turn_count", count,
		"checkpoint", checkpoint,
		"fallback", genErr != nil,
	)
	c.flush(ctx, &ob)
}

// handleFacilitatorLocked applies a facilitator reply. Caller holds mu and
// has verified the session is waiting on the facilitator.
func (c *Controller) handleFacilitatorLocked(ctx context.Context, input string, ob *outbox) {
	s := c.state

	switch strings.ToUpper(input) {
	case "Y":
		s.World.IsAwaitingFacilitator = false
		s.World.ChimeraTurnCount = 0
		s.IsAwaitingPlayerAction = false
		ob.system("Facilitator approved. Autonomous turns resume.")
		c.scheduleProcessLocked(c.cfg.TurnDelay)
		slog.InfoContext(ctx, "Facilitator approved continuation", "session_id", c.cfg.SessionID)

	case "N":
		c.halted = true
		c.cancelTimersLocked()
		ob.system("Facilitator halted the simulation.")
		ob.requestMode(c.cfg.FallbackMode, "facilitator halted the autonomous loop")
		slog.InfoContext(ctx, "Facilitator halted session", "session_id", c.cfg.SessionID)

	default:
		s.Narrative = "[FACILITATOR DIRECTIVE] " + input + "\n\n" + s.Narrative
		s.World.IsAwaitingFacilitator = false
		s.World.ChimeraTurnCount = 0
		s.IsAwaitingPlayerAction = true
		ob.system("Directive recorded. Awaiting player action.")
		c.scheduleAutoPilotLocked()
		slog.InfoContext(ctx, "Facilitator issued directive", "session_id", c.cfg.SessionID)
	}
}

func (c *Controller) turnPromptLocked(action string) string {
	s := c.state
	node := c.graph.Nodes[s.CurrentNodeID]

	actionLine := c.cfg.Prompts.Steps.NoAction
	if action != "" {
		actionLine = prompts.Render(c.cfg.Prompts.Steps.PlayerAction, map[string]string{"action": action})
	}

	return prompts.Render(c.cfg.Prompts.Steps.Turn, map[string]string{
		"node_name":        node.Name,
		"node_description": node.Description,
		"exits":            c.exitsLocked(node),
		"objects":          orNone(s.InteractableObjectIDs),
		"narrative":        s.Narrative,
		"player_action":    actionLine,
	})
}

func (c *Controller) exitsLocked(node *chimera.MapNode) string {
	exits := make([]string, 0, len(node.Connections))
	for _, id := range node.Connections {
		if n, ok := c.graph.Node(id); ok {
			exits = append(exits, fmt.Sprintf("%s (%s)", n.ID, n.Name))
		}
	}
	sort.Strings(exits)
	if node.IsExitNode {
		exits = append(exits, "EXIT to "+node.ExitLeadsToMapID)
	}
	return orNone(exits)
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// scheduleAutoPilotLocked queues the player persona to act if the human
// does not. Caller holds mu.
func (c *Controller) scheduleAutoPilotLocked() {
	if !c.cfg.AutoPilot || !c.autoPilotReadyLocked() {
		return
	}
	c.scheduleLocked(c.cfg.AutoPilotDelay, "autopilot", c.runAutoPilot)
}

func (c *Controller) autoPilotReadyLocked() bool {
	s := c.state
	return s != nil && !c.emergencyStop && !c.halted && !c.busy && !c.thinking &&
		s.IsAwaitingPlayerAction && !s.World.IsAwaitingFacilitator && s.Mode != chimera.ModeCombat
}

func (c *Controller) runAutoPilot() {
	ctx := c.ctx

	c.mu.Lock()
	if !c.alive || !c.autoPilotReadyLocked() {
		c.mu.Unlock()
		return
	}
	c.busy = true
	node := c.graph.Nodes[c.state.CurrentNodeID]
	prompt := fmt.Sprintf("%s\n\nExits: %s\nReply with one action on a single line, such as MOVE <node id> or a short intent.",
		c.state.Narrative, c.exitsLocked(node))
	c.mu.Unlock()

	text, genErr := c.generate(c.cfg.PlayerAI, c.cfg.Prompts.PlayerAI.System, nil, prompt)

	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()

	if genErr != nil {
		var ob outbox
		ob.system(serviceFailureMessage(genErr,
			"The player persona is rate limited (quota exhausted). Waiting for a human action.",
			"The player persona could not act. Waiting for a human action."))
		c.flush(ctx, &ob)
		return
	}

	action := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	if err := c.submit(ctx, terminal.SenderPlayerAI, action); err != nil {
		slog.InfoContext(ctx, "Autopilot action not applied",
			"session_id", c.cfg.SessionID,
			"action", action,
			"error", err,
		)
	}
}
