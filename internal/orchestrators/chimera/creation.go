package chimera

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KirkDiggler/chimera-protocol/internal/clients/ai"
	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/prompts"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/maps"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/templates"
	"github.com/KirkDiggler/chimera-protocol/internal/terminal"
)

// nextCreationStepLocked claims the step for the current creation state, or
// returns nil when the step already fired, is in flight or is suppressed.
func (c *Controller) nextCreationStepLocked(ctx context.Context, ob *outbox) func() {
	if c.emergencyStop || c.busy {
		return nil
	}

	gen := c.generation
	switch c.creation {
	case CreationAwaitingArchetypes:
		if c.progress.archetypes {
			return nil
		}
		c.progress.archetypes = true
		c.busy = true
		return func() { c.runArchetypes(ctx, gen) }

	case CreationAwaitingPlayerChoice:
		if c.progress.playerChoice {
			return nil
		}
		c.progress.playerChoice = true
		c.busy = true
		return func() { c.runPlayerChoice(ctx, gen) }

	case CreationGeneratingAvatar:
		if c.progress.avatar {
			return nil
		}
		c.progress.avatar = true
		c.busy = true
		archetype, backstory := c.archetype, c.backstory
		return func() { c.runCreationAvatar(ctx, gen, archetype, backstory) }

	case CreationAwaitingIncitingIncident:
		if !c.progress.avatarDone || c.progress.incitingIncident {
			return nil
		}
		c.progress.incitingIncident = true
		c.busy = true
		return func() { c.runIncitingIncident(ctx, gen) }
	}

	return nil
}

func (c *Controller) runArchetypes(ctx context.Context, gen int) {
	options, err := c.playerTemplates(ctx)
	if err != nil {
		c.abortCreation(ctx, gen, "no player archetypes are available", err)
		return
	}

	names := archetypeNames(options)
	prompt := prompts.Render(c.cfg.Prompts.Steps.Archetypes, map[string]string{
		"archetypes": strings.Join(names, ", "),
	})
	text, genErr := c.generate(c.cfg.DM, c.cfg.Prompts.DM.System, nil, prompt)

	var ob outbox
	c.mu.Lock()
	if !c.creationCurrentLocked(gen) {
		c.mu.Unlock()
		return
	}
	c.busy = false
	if genErr != nil {
		ob.system(serviceFailureMessage(genErr, MsgDMQuota, MsgDMFailed))
		text = "The simulation offers three shells: " + strings.Join(names, ", ") + ". Choose."
	} else {
		c.rememberDMLocked(prompt, text)
	}
	ob.say(terminal.SenderDM, text)
	c.creation = CreationAwaitingPlayerChoice
	c.scheduleProcessLocked(c.cfg.StepDelay)
	c.mu.Unlock()

	slog.InfoContext(ctx, "Creation step complete",
		"session_id", c.cfg.SessionID,
		"step", CreationAwaitingArchetypes,
		"fallback", genErr != nil,
	)
	c.flush(ctx, &ob)
}

func (c *Controller) runPlayerChoice(ctx context.Context, gen int) {
	options, err := c.playerTemplates(ctx)
	if err != nil {
		c.abortCreation(ctx, gen, "no player archetypes are available", err)
		return
	}

	prompt := prompts.Render(c.cfg.Prompts.Steps.PlayerChoice, map[string]string{
		"archetypes": strings.Join(archetypeNames(options), ", "),
	})
	text, genErr := c.generate(c.cfg.PlayerAI, c.cfg.Prompts.PlayerAI.System, nil, prompt)

	var ob outbox
	if genErr != nil {
		ob.system(serviceFailureMessage(genErr,
			"The player persona is rate limited (quota exhausted). Defaulting to the first archetype.",
			"The player persona could not be reached. Defaulting to the first archetype."))
		text = fmt.Sprintf("I'll take the %s. No past worth mentioning.", options[0].Name)
	}
	choice := matchArchetype(text, options)

	c.mu.Lock()
	if !c.creationCurrentLocked(gen) {
		c.mu.Unlock()
		return
	}
	c.busy = false
	c.archetype = choice
	c.backstory = text
	ob.say(terminal.SenderPlayerAI, text)
	ob.system(fmt.Sprintf("Archetype locked: %s.", choice.Name))
	c.creation = CreationGeneratingAvatar
	c.scheduleProcessLocked(c.cfg.StepDelay)
	c.mu.Unlock()

	slog.InfoContext(ctx, "Creation step complete",
		"session_id", c.cfg.SessionID,
		"step", CreationAwaitingPlayerChoice,
		"archetype", choice.ID,
		"fallback", genErr != nil,
	)
	c.flush(ctx, &ob)
}

func (c *Controller) runCreationAvatar(ctx context.Context, gen int, archetype *chimera.Template, backstory string) {
	name := "drifter"
	if archetype != nil {
		name = archetype.Name
	}
	ref, genErr := c.generateAvatar(name, backstory)

	var ob outbox
	c.mu.Lock()
	if !c.creationCurrentLocked(gen) {
		c.mu.Unlock()
		return
	}
	c.busy = false
	if genErr != nil {
		ob.system(serviceFailureMessage(genErr, MsgAvatarQuota, MsgAvatarFailed))
		ref = DefaultAvatarRef
	} else {
		ob.system("Avatar rendered.")
	}
	c.avatarRef = ref
	c.progress.avatarDone = true
	c.creation = CreationAwaitingIncitingIncident
	c.scheduleProcessLocked(c.cfg.StepDelay)
	c.mu.Unlock()

	if genErr != nil {
		slog.WarnContext(ctx, "Avatar generation failed, using default",
			"session_id", c.cfg.SessionID,
			"quota", errors.IsQuotaExhausted(genErr),
			"error", genErr,
		)
	}
	c.flush(ctx, &ob)
}

func (c *Controller) runIncitingIncident(ctx context.Context, gen int) {
	graph, err := c.loadMap(ctx, c.cfg.StartMapID)
	if err != nil {
		c.abortCreation(ctx, gen, fmt.Sprintf("starting map %s could not be loaded.", c.cfg.StartMapID), err)
		return
	}

	c.mu.Lock()
	if !c.creationCurrentLocked(gen) {
		c.mu.Unlock()
		return
	}
	archetype, backstory, avatar := c.archetype, c.backstory, c.avatarRef
	c.mu.Unlock()

	entry := graph.Nodes[graph.DefaultEntryNodeID]
	player := archetype.Instantiate(chimera.PlayerCombatantID, entry.ID)
	player.Kind = chimera.KindPlayer
	player.PushAvatar(avatar)

	state := &chimera.GameState{
		Mode:                  chimera.ModeExploration,
		Player:                player,
		Combatants:            map[string]*chimera.Character{chimera.PlayerCombatantID: player},
		TurnOrder:             []string{chimera.PlayerCombatantID},
		World:                 chimera.WorldState{PlayerArchetype: archetype.Name, PlayerBackstory: backstory},
		CurrentMapID:          graph.ID,
		CurrentNodeID:         entry.ID,
		InteractableObjectIDs: append([]string(nil), entry.InteractableObjectIDs...),
		Quests:                []chimera.Quest{initialQuest()},
		CombatLog:             []chimera.CombatLogEntry{},
	}

	prompt := prompts.Render(c.cfg.Prompts.Steps.IncitingIncident, map[string]string{
		"archetype":        archetype.Name,
		"backstory":        backstory,
		"node_name":        entry.Name,
		"node_description": entry.Description,
	})
	c.mu.Lock()
	history := append([]ai.Turn(nil), c.dmHistory...)
	c.mu.Unlock()
	text, genErr := c.generate(c.cfg.DM, c.cfg.Prompts.DM.System, history, prompt)

	var ob outbox
	c.mu.Lock()
	if !c.creationCurrentLocked(gen) {
		c.mu.Unlock()
		return
	}
	c.busy = false
	if genErr != nil {
		ob.system(serviceFailureMessage(genErr, MsgDMQuota, MsgDMFailed))
		text = MsgOutcomePend
	} else {
		c.rememberDMLocked(prompt, text)
	}
	state.Narrative = text
	state.IsAwaitingPlayerAction = true
	c.state = state
	c.graph = graph
	c.creation = CreationComplete
	ob.say(terminal.SenderDM, text)
	ob.system(fmt.Sprintf("Character creation complete. %s stands at %s. Type HELP for commands.", player.Name, entry.Name))
	c.scheduleAutoPilotLocked()
	c.mu.Unlock()

	slog.InfoContext(ctx, "Character creation complete",
		"session_id", c.cfg.SessionID,
		"map_id", graph.ID,
		"node_id", entry.ID,
		"archetype", archetype.ID,
	)
	c.flush(ctx, &ob)
}

// abortCreation returns the pipeline to IDLE without creating any state
func (c *Controller) abortCreation(ctx context.Context, gen int, reason string, cause error) {
	slog.ErrorContext(ctx, "Character creation aborted",
		"session_id", c.cfg.SessionID,
		"reason", reason,
		"error", cause,
	)

	var ob outbox
	c.mu.Lock()
	if !c.creationCurrentLocked(gen) {
		c.mu.Unlock()
		return
	}
	c.busy = false
	c.generation++
	c.creation = CreationIdle
	c.progress = creationProgress{}
	c.state = nil
	c.graph = nil
	c.archetype = nil
	c.backstory = ""
	c.avatarRef = ""
	c.dmHistory = nil
	ob.system("FATAL: " + reason + " The Chimera Protocol cannot continue.")
	ob.requestMode(c.cfg.FallbackMode, reason)
	c.mu.Unlock()

	c.flush(ctx, &ob)
}

// creationCurrentLocked reports whether a creation step claimed in
// generation gen may still apply its result. Caller holds mu.
func (c *Controller) creationCurrentLocked(gen int) bool {
	return c.alive && c.generation == gen
}

// scheduleProcessLocked queues the next Process unless the emergency stop
// is active. Caller holds mu.
func (c *Controller) scheduleProcessLocked(d time.Duration) {
	if c.emergencyStop || c.halted {
		return
	}
	c.scheduleLocked(d, "process", c.Process)
}

func (c *Controller) generate(gen ai.TextGenerator, system string, history []ai.Turn, prompt string) (string, error) {
	ctx, cancel := c.aiContext()
	defer cancel()

	text, err := gen.GenerateText(ctx, &ai.TextRequest{
		SystemPrompt: system,
		History:      history,
		Prompt:       prompt,
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.Unavailable("empty response")
	}
	return text, nil
}

func (c *Controller) generateAvatar(archetype, backstory string) (string, error) {
	prompt := prompts.Render(c.cfg.Prompts.Steps.Avatar, map[string]string{
		"archetype": archetype,
		"backstory": backstory,
	})

	ctx, cancel := c.aiContext()
	defer cancel()

	img, err := c.cfg.Images.GenerateImage(ctx, &ai.ImageRequest{
		Prompt: prompt,
		Count:  1,
		Format: ai.ImageFormatPNG,
	})
	if err != nil {
		return "", err
	}
	if img == nil || len(img.Data) == 0 {
		return "", errors.Unavailable("empty image")
	}
	return img.DataURI(), nil
}

func (c *Controller) playerTemplates(ctx context.Context) ([]*chimera.Template, error) {
	out, err := c.cfg.Templates.List(ctx, &templates.ListInput{Kind: chimera.KindPlayer})
	if err != nil {
		return nil, err
	}
	if len(out.Templates) == 0 {
		return nil, errors.DataIntegrity("no player templates")
	}
	return out.Templates, nil
}

func (c *Controller) loadMap(ctx context.Context, mapID string) (*chimera.MapGraph, error) {
	out, err := c.cfg.Maps.Get(ctx, &maps.GetInput{MapID: mapID})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "map missing")
		}
		return nil, err
	}
	if _, ok := out.Map.Node(out.Map.DefaultEntryNodeID); !ok {
		return nil, errors.DataIntegrityf("map %s has no entry node", mapID)
	}
	return out.Map, nil
}

func archetypeNames(options []*chimera.Template) []string {
	names := make([]string, len(options))
	for i, t := range options {
		names[i] = t.Name
	}
	return names
}

// matchArchetype picks the template named earliest in text, by name or
// archetype, ignoring case. The first option is the fallback.
func matchArchetype(text string, options []*chimera.Template) *chimera.Template {
	lower := strings.ToLower(text)
	best, bestIdx := options[0], -1
	for _, t := range options {
		for _, key := range []string{t.Name, t.Archetype} {
			if key == "" {
				continue
			}
			idx := strings.Index(lower, strings.ToLower(key))
			if idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
				best, bestIdx = t, idx
			}
		}
	}
	return best
}

func initialQuest() chimera.Quest {
	return chimera.Quest{
		ID:          "establish_foothold",
		Title:       "Establish a foothold",
		Description: "Find your footing in the plaza before the Chimera relay notices you.",
		Status:      chimera.QuestStatusActive,
		Objectives: []chimera.Objective{
			{Description: "Survey the plaza"},
			{Description: "Find a contact who can get you below"},
			{Description: "Reach the Chimera relay"},
		},
	}
}
