package chimera

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/templates"
	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/dice"
)

const unarmedDamage = "1d4"

// StartEncounter spawns NPCs from templates at the player's node, rolls
// initiative and switches the session to COMBAT. NPC turns that come before
// the player's resolve immediately.
func (c *Controller) StartEncounter(ctx context.Context, input *StartEncounterInput) (*StartEncounterOutput, error) {
	if input == nil || len(input.TemplateIDs) == 0 {
		return nil, errors.InvalidArgument("at least one template id is required")
	}

	npcs := make([]*chimera.Template, 0, len(input.TemplateIDs))
	for _, id := range input.TemplateIDs {
		out, err := c.cfg.Templates.Get(ctx, &templates.GetInput{TemplateID: id})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load template %s", id)
		}
		if out.Template.Kind != chimera.KindNPC {
			return nil, errors.InvalidArgumentf("template %s is not an npc", id)
		}
		npcs = append(npcs, out.Template)
	}

	var ob outbox
	c.mu.Lock()
	if err := c.encounterGuardLocked(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	s := c.state
	if s.Mode == chimera.ModeCombat {
		c.mu.Unlock()
		return nil, errors.FailedPrecondition("an encounter is already running")
	}

	names := make([]string, 0, len(npcs))
	for _, t := range npcs {
		npc := t.Instantiate(c.cfg.IDGen.Generate(), s.CurrentNodeID)
		npc.Kind = chimera.KindNPC
		s.Combatants[npc.ID] = npc
		names = append(names, fmt.Sprintf("%s (%s)", npc.Name, npc.ID))
	}

	rolls, err := c.rollInitiativeLocked()
	if err != nil {
		for id, ch := range s.Combatants {
			if isHostile(ch) {
				delete(s.Combatants, id)
			}
		}
		c.mu.Unlock()
		return nil, errors.Wrap(err, "failed to roll initiative")
	}

	c.cancelTimersLocked()
	c.pendingAction = ""
	c.thinking = false
	s.Mode = chimera.ModeCombat
	s.Round = 1
	s.ActiveTurnIndex = 0
	s.TurnOrder = make([]string, len(rolls))
	for i, r := range rolls {
		s.TurnOrder[i] = r.CombatantID
	}
	s.IsAwaitingPlayerAction = true

	c.logCombatLocked("", "Encounter started: "+strings.Join(names, ", "), &ob)
	for _, r := range rolls {
		c.logCombatLocked(r.CombatantID, fmt.Sprintf("%s rolls initiative %d (%d%+d)", c.combatantName(r.CombatantID), r.Total, r.Roll, r.Modifier), &ob)
	}
	c.runNPCTurnsLocked(&ob)

	out := &StartEncounterOutput{Rolls: rolls, TurnOrder: append([]string(nil), s.TurnOrder...)}
	c.mu.Unlock()

	slog.InfoContext(ctx, "Encounter started",
		"session_id", c.cfg.SessionID,
		"turn_order", out.TurnOrder,
	)
	c.flush(ctx, &ob)
	return out, nil
}

// AdvanceTurn moves to the next living combatant, starting a new round
// when the order wraps
func (c *Controller) AdvanceTurn(ctx context.Context) (*AdvanceTurnOutput, error) {
	var ob outbox
	c.mu.Lock()
	if err := c.combatGuardLocked(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.advanceLocked(&ob)
	s := c.state
	out := &AdvanceTurnOutput{ActiveCombatantID: s.ActiveCombatantID(), Round: s.Round}
	c.mu.Unlock()

	c.flush(ctx, &ob)
	return out, nil
}

// EndEncounter removes the NPCs and returns the session to EXPLORATION
func (c *Controller) EndEncounter(ctx context.Context) error {
	var ob outbox
	c.mu.Lock()
	if err := c.combatGuardLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.endEncounterLocked("Encounter ended.", &ob)
	c.mu.Unlock()

	slog.InfoContext(ctx, "Encounter ended", "session_id", c.cfg.SessionID)
	c.flush(ctx, &ob)
	return nil
}

func (c *Controller) encounterGuardLocked() error {
	if !c.alive {
		return errors.FailedPrecondition("session disposed")
	}
	if c.state == nil || c.creation != CreationComplete {
		return errors.FailedPrecondition("character creation has not completed")
	}
	if c.halted {
		return errors.FailedPrecondition("session halted")
	}
	if c.busy {
		return errors.FailedPrecondition("an AI step is in flight")
	}
	return nil
}

func (c *Controller) combatGuardLocked() error {
	if err := c.encounterGuardLocked(); err != nil {
		return err
	}
	if c.state.Mode != chimera.ModeCombat {
		return errors.FailedPrecondition("no encounter is running")
	}
	return nil
}

// rollInitiativeLocked rolls d20 plus the DEX modifier for every living
// combatant. Ties go to the higher modifier, then to the lower id.
func (c *Controller) rollInitiativeLocked() ([]InitiativeRoll, error) {
	entities := make(map[core.Entity]int, len(c.state.Combatants))
	for _, ch := range c.state.Combatants {
		if ch.IsAlive {
			entities[ch] = ch.Modifier("DEX")
		}
	}
	return rollForOrder(entities, c.cfg.Roller)
}

// rollForOrder rolls initiative for each entity with its modifier and returns
// the rolls in turn order
func rollForOrder(entities map[core.Entity]int, roller dice.Roller) ([]InitiativeRoll, error) {
	order := make([]core.Entity, 0, len(entities))
	for e := range entities {
		order = append(order, e)
	}
	// map order is random; roll in id order so seeded rollers replay
	sort.Slice(order, func(i, j int) bool { return order[i].GetID() < order[j].GetID() })

	rolls := make([]InitiativeRoll, 0, len(order))
	for _, e := range order {
		roll, err := roller.Roll(20)
		if err != nil {
			return nil, err
		}
		mod := entities[e]
		rolls = append(rolls, InitiativeRoll{CombatantID: e.GetID(), Roll: roll, Modifier: mod, Total: roll + mod})
	}

	sort.Slice(rolls, func(i, j int) bool {
		if rolls[i].Total != rolls[j].Total {
			return rolls[i].Total > rolls[j].Total
		}
		if rolls[i].Modifier != rolls[j].Modifier {
			return rolls[i].Modifier > rolls[j].Modifier
		}
		return rolls[i].CombatantID < rolls[j].CombatantID
	})
	return rolls, nil
}

// isHostile reports whether an entity fights against the player
func isHostile(e core.Entity) bool {
	return e != nil && e.GetType() == chimera.KindNPC
}

func (c *Controller) combatActionLocked(ctx context.Context, verb, arg string, ob *outbox) error {
	s := c.state
	if s.ActiveCombatantID() != chimera.PlayerCombatantID {
		ob.system("It is not your turn in the fight.")
		return errors.FailedPrecondition("not the player's combat turn")
	}

	switch verb {
	case "attack":
		target, ok := c.findTargetLocked(arg)
		if !ok {
			ob.system(fmt.Sprintf("No hostile called %q. Targets: %s.", arg, orNone(c.hostileIDsLocked())))
			return errors.InvalidArgumentf("unknown target %s", arg)
		}
		if err := c.attackLocked(s.Player, target, ob); err != nil {
			return err
		}
		if len(c.hostileIDsLocked()) == 0 {
			c.endEncounterLocked("All hostiles are down. Encounter won.", ob)
			return nil
		}
		c.advanceLocked(ob)
		c.runNPCTurnsLocked(ob)
		return nil

	case "flee":
		c.endEncounterLocked(s.Player.Name+" breaks away and flees the fight.", ob)
		slog.InfoContext(ctx, "Player fled encounter", "session_id", c.cfg.SessionID)
		return nil
	}

	ob.system("In combat you can ATTACK <target>, FLEE or ask for HELP.")
	return errors.InvalidArgumentf("%s is not a combat action", verb)
}

// attackLocked resolves one attack: d20 plus DEX modifier against armor,
// then weapon damage on a hit
func (c *Controller) attackLocked(attacker, target *chimera.Character, ob *outbox) error {
	weapon := primaryWeapon(attacker)
	weaponName, damage := "bare hands", unarmedDamage
	if weapon != nil {
		weaponName, damage = weapon.Name, weapon.Combat.Damage
		if weapon.Combat.AmmoCapacity > 0 {
			if weapon.Combat.AmmoCurrent == 0 {
				c.logCombatLocked(attacker.ID, fmt.Sprintf("%s pulls the trigger on an empty %s.", attacker.Name, weaponName), ob)
				return nil
			}
			weapon.Combat.AmmoCurrent--
		}
	}

	roll, err := c.cfg.Roller.Roll(20)
	if err != nil {
		return errors.Wrap(err, "failed to roll attack")
	}
	total := roll + attacker.Modifier("DEX")
	if total < target.Armor {
		c.logCombatLocked(attacker.ID, fmt.Sprintf("%s attacks %s with %s: %d vs armor %d, miss.", attacker.Name, target.Name, weaponName, total, target.Armor), ob)
		return nil
	}

	count, size, err := parseDice(damage)
	if err != nil {
		return err
	}
	dealt, err := c.rollSum(count, size)
	if err != nil {
		return errors.Wrap(err, "failed to roll damage")
	}
	target.Damage(dealt)
	c.logCombatLocked(attacker.ID, fmt.Sprintf("%s hits %s with %s: %d vs armor %d, %d damage (%d/%d HP).",
		attacker.Name, target.Name, weaponName, total, target.Armor, dealt, target.HP.Current, target.HP.Max), ob)
	if !target.IsAlive {
		c.logCombatLocked(attacker.ID, target.Name+" goes down.", ob)
	}
	return nil
}

func (c *Controller) rollSum(count, size int) (int, error) {
	rolls, err := c.cfg.Roller.RollN(count, size)
	if err != nil {
		return 0, err
	}
	sum := 0
	for _, r := range rolls {
		sum += r
	}
	return sum, nil
}

// runNPCTurnsLocked resolves NPC turns until it is the player's turn again
// or the fight is over
func (c *Controller) runNPCTurnsLocked(ob *outbox) {
	s := c.state
	for s.Mode == chimera.ModeCombat {
		npc := s.Combatants[s.ActiveCombatantID()]
		if npc == nil || !isHostile(npc) {
			break
		}
		if npc.IsAlive {
			if err := c.attackLocked(npc, s.Player, ob); err != nil {
				slog.Error("NPC attack failed", "session_id", c.cfg.SessionID, "npc_id", npc.ID, "error", err)
			}
		}
		if !s.Player.IsAlive {
			c.endEncounterLocked(s.Player.Name+" flatlines. The encounter is lost.", ob)
			return
		}
		c.advanceLocked(ob)
	}
	s.IsAwaitingPlayerAction = true
}

func (c *Controller) advanceLocked(ob *outbox) {
	s := c.state
	n := len(s.TurnOrder)
	for i := 0; i < n; i++ {
		s.ActiveTurnIndex++
		if s.ActiveTurnIndex >= n {
			s.ActiveTurnIndex = 0
			s.Round++
			c.logCombatLocked("", fmt.Sprintf("Round %d.", s.Round), ob)
		}
		if ch := s.Combatants[s.ActiveCombatantID()]; ch != nil && ch.IsAlive {
			return
		}
	}
}

func (c *Controller) endEncounterLocked(text string, ob *outbox) {
	s := c.state
	for id, ch := range s.Combatants {
		if isHostile(ch) {
			delete(s.Combatants, id)
		}
	}
	c.logCombatLocked("", text, ob)
	s.Mode = chimera.ModeExploration
	s.TurnOrder = []string{chimera.PlayerCombatantID}
	s.ActiveTurnIndex = 0
	s.Round = 0
	s.IsAwaitingPlayerAction = true
	c.scheduleAutoPilotLocked()
}

func (c *Controller) logCombatLocked(actorID, text string, ob *outbox) {
	c.state.CombatLog = append(c.state.CombatLog, chimera.CombatLogEntry{Round: c.state.Round, ActorID: actorID, Text: text})
	ob.system(text)
}

func (c *Controller) findTargetLocked(arg string) (*chimera.Character, bool) {
	arg = strings.TrimSpace(arg)
	ids := c.hostileIDsLocked()
	for _, id := range ids {
		ch := c.state.Combatants[id]
		if strings.EqualFold(id, arg) || strings.EqualFold(ch.Name, arg) {
			return ch, true
		}
	}
	// a lone hostile needs no name
	if arg == "" && len(ids) == 1 {
		return c.state.Combatants[ids[0]], true
	}
	return nil, false
}

func (c *Controller) hostileIDsLocked() []string {
	var ids []string
	for id, ch := range c.state.Combatants {
		if isHostile(ch) && ch.IsAlive {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (c *Controller) combatantName(id string) string {
	if ch := c.state.Combatants[id]; ch != nil {
		return ch.Name
	}
	return id
}

// primaryWeapon prefers an equipped weapon, then any weapon
func primaryWeapon(ch *chimera.Character) *chimera.Item {
	var fallback *chimera.Item
	for i := range ch.Inventory {
		it := &ch.Inventory[i]
		if it.Category != chimera.ItemCategoryWeapon || it.Combat == nil || it.Combat.Damage == "" {
			continue
		}
		if it.Equipped {
			return it
		}
		if fallback == nil {
			fallback = it
		}
	}
	return fallback
}

// parseDice parses an "NdM" expression
func parseDice(expr string) (int, int, error) {
	n, m, ok := strings.Cut(strings.ToLower(strings.TrimSpace(expr)), "d")
	if !ok {
		return 0, 0, errors.InvalidArgumentf("invalid dice expression %q", expr)
	}
	count := 1
	if n != "" {
		v, err := strconv.Atoi(n)
		if err != nil || v < 1 {
			return 0, 0, errors.InvalidArgumentf("invalid dice expression %q", expr)
		}
		count = v
	}
	size, err := strconv.Atoi(m)
	if err != nil || size < 2 {
		return 0, 0, errors.InvalidArgumentf("invalid dice expression %q", expr)
	}
	return count, size, nil
}
