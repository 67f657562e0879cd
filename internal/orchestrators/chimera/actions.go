package chimera

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/terminal"
)

var moveCommand = regexp.MustCompile(`(?i)^move\s+(\S+)`)

// Submit handles a line typed by the human. While the facilitator checkpoint
// is open the line is a facilitator reply; otherwise it is a player action.
// Input arriving when the player may not act is rejected with a notice and
// leaves the state untouched.
func (c *Controller) Submit(ctx context.Context, input string) error {
	return c.submit(ctx, terminal.SenderUserInput, input)
}

func (c *Controller) submit(ctx context.Context, sender terminal.Sender, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return errors.InvalidArgument("input is required")
	}

	var ob outbox
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return errors.FailedPrecondition("session disposed")
	}

	if c.facilitatorOpenLocked() {
		if sender != terminal.SenderUserInput {
			c.mu.Unlock()
			return errors.FailedPrecondition("waiting on the facilitator")
		}
		ob.say(terminal.SenderFacilitator, input)
		c.handleFacilitatorLocked(ctx, input, &ob)
		c.mu.Unlock()
		c.flush(ctx, &ob)
		return nil
	}

	if verb, _ := splitCommand(input); verb == "exit" || verb == "traverse" {
		c.mu.Unlock()
		return c.exitMap(ctx, sender, input)
	}

	if err := c.actionGuardLocked(&ob); err != nil {
		c.mu.Unlock()
		c.flush(ctx, &ob)
		return err
	}

	ob.say(sender, input)
	err := c.applyActionLocked(ctx, input, &ob)
	c.mu.Unlock()

	if err != nil {
		slog.InfoContext(ctx, "Player action rejected",
			"session_id", c.cfg.SessionID,
			"sender", sender,
			"input", input,
			"error", err,
		)
	}
	c.flush(ctx, &ob)
	return err
}

func (c *Controller) facilitatorOpenLocked() bool {
	return c.state != nil && c.creation == CreationComplete && c.state.World.IsAwaitingFacilitator && !c.halted
}

// actionGuardLocked rejects input the player may not send right now
func (c *Controller) actionGuardLocked(ob *outbox) error {
	var reason string
	switch {
	case c.state == nil || c.creation != CreationComplete:
		reason = "Character creation in progress. Please wait."
	case c.halted:
		reason = "The simulation has been halted."
	case c.state.World.IsAwaitingFacilitator:
		reason = "Waiting on the facilitator."
	case c.busy || c.thinking:
		reason = "The simulation is still processing. Please wait."
	case !c.state.IsAwaitingPlayerAction:
		reason = "It is not your turn to act."
	default:
		return nil
	}
	ob.notice = reason
	return errors.FailedPrecondition(reason)
}

func (c *Controller) applyActionLocked(ctx context.Context, input string, ob *outbox) error {
	verb, arg := splitCommand(input)
	if verb == "help" {
		ob.system(MsgHelp)
		return nil
	}

	if c.state.Mode == chimera.ModeCombat {
		return c.combatActionLocked(ctx, verb, arg, ob)
	}

	switch verb {
	case "attack", "flee":
		ob.system("There is nothing to fight here.")
		return errors.InvalidArgumentf("%s is only available in combat", verb)
	}

	if m := moveCommand.FindStringSubmatch(input); m != nil {
		return c.moveLocked(m[1], ob)
	}

	c.acceptLocked(input)
	return nil
}

// moveLocked moves the player along one edge of the current map
func (c *Controller) moveLocked(target string, ob *outbox) error {
	s := c.state
	current := c.graph.Nodes[s.CurrentNodeID]

	node, ok := c.graph.FindNodeFold(target)
	if !ok {
		ob.system(fmt.Sprintf("Movement rejected: there is no location called %q here. Exits: %s.", target, c.exitsLocked(current)))
		return errors.InvalidArgumentf("unknown node %s", target)
	}
	if !current.ConnectsTo(node.ID) {
		ob.system(fmt.Sprintf("Movement rejected: %s is not connected to %s. Exits: %s.", node.ID, current.ID, c.exitsLocked(current)))
		return errors.InvalidArgumentf("node %s is not connected to %s", node.ID, current.ID)
	}

	c.enterNodeLocked(node)
	ob.system(fmt.Sprintf("You move to %s (%s).", node.Name, node.ID))
	c.acceptLocked(fmt.Sprintf("moves to %s (%s)", node.Name, node.ID))
	return nil
}

func (c *Controller) enterNodeLocked(node *chimera.MapNode) {
	s := c.state
	s.CurrentNodeID = node.ID
	s.Player.GridPos = node.ID
	s.InteractableObjectIDs = append([]string(nil), node.InteractableObjectIDs...)
}

// acceptLocked hands an accepted action to the next turn after a short
// thinking pause
func (c *Controller) acceptLocked(action string) {
	if c.pendingAction != "" {
		action = c.pendingAction + "; " + action
	}
	c.pendingAction = action
	c.state.IsAwaitingPlayerAction = false
	if c.emergencyStop {
		// held for the next turn; clearing the stop hands control back
		return
	}
	c.thinking = true
	c.scheduleLocked(c.cfg.ThinkingDelay, "thinking", func() {
		c.mu.Lock()
		c.thinking = false
		c.mu.Unlock()
		c.Process()
	})
}

// exitMap leaves the current map through an exit node. The target map is
// loaded without the lock held, so the state is re-checked afterwards.
func (c *Controller) exitMap(ctx context.Context, sender terminal.Sender, input string) error {
	var ob outbox

	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return errors.FailedPrecondition("session disposed")
	}
	if err := c.actionGuardLocked(&ob); err != nil {
		c.mu.Unlock()
		c.flush(ctx, &ob)
		return err
	}

	s := c.state
	node := c.graph.Nodes[s.CurrentNodeID]
	if s.Mode == chimera.ModeCombat || !node.IsExitNode {
		ob.say(sender, input)
		msg := "There is no exit here."
		if s.Mode == chimera.ModeCombat {
			msg = "You cannot leave during combat. FLEE first."
		}
		ob.system(msg)
		c.mu.Unlock()
		c.flush(ctx, &ob)
		return errors.InvalidArgument(msg)
	}
	targetID := node.ExitLeadsToMapID
	c.mu.Unlock()

	graph, loadErr := c.loadMap(ctx, targetID)

	c.mu.Lock()
	if !c.alive || c.state != s || s.CurrentNodeID != node.ID {
		c.mu.Unlock()
		return errors.FailedPrecondition("session changed while loading the map")
	}
	if err := c.actionGuardLocked(&ob); err != nil {
		c.mu.Unlock()
		c.flush(ctx, &ob)
		return err
	}
	ob.say(sender, input)
	if loadErr != nil {
		ob.system(fmt.Sprintf("The exit is sealed: map %s is missing from the simulation data.", targetID))
		c.mu.Unlock()
		slog.ErrorContext(ctx, "Exit target map unavailable",
			"session_id", c.cfg.SessionID,
			"map_id", targetID,
			"error", loadErr,
		)
		c.flush(ctx, &ob)
		return loadErr
	}

	entry := graph.Nodes[graph.DefaultEntryNodeID]
	c.graph = graph
	s.CurrentMapID = graph.ID
	c.enterNodeLocked(entry)
	ob.system(fmt.Sprintf("You leave through %s. Map: %s. You arrive at %s (%s).", node.Name, graph.Name, entry.Name, entry.ID))
	c.acceptLocked(fmt.Sprintf("travels to %s and arrives at %s (%s)", graph.Name, entry.Name, entry.ID))
	c.mu.Unlock()

	slog.InfoContext(ctx, "Player changed map",
		"session_id", c.cfg.SessionID,
		"map_id", graph.ID,
		"node_id", entry.ID,
	)
	c.flush(ctx, &ob)
	return nil
}

// splitCommand returns the lower-cased first word and the rest of input
func splitCommand(input string) (string, string) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", ""
	}
	verb := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), fields[0]))
	return verb, rest
}
