package chimera

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// CompleteObjective marks one objective done. The quest completes when its
// last open objective is done.
func (c *Controller) CompleteObjective(ctx context.Context, input *CompleteObjectiveInput) (*CompleteObjectiveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.QuestID == "" {
		return nil, errors.InvalidArgument("quest id is required")
	}

	var ob outbox
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return nil, errors.FailedPrecondition("session disposed")
	}
	if c.state == nil {
		c.mu.Unlock()
		return nil, errors.FailedPrecondition("character creation has not completed")
	}

	var quest *chimera.Quest
	for i := range c.state.Quests {
		if c.state.Quests[i].ID == input.QuestID {
			quest = &c.state.Quests[i]
			break
		}
	}
	if quest == nil {
		c.mu.Unlock()
		return nil, errors.NotFoundf("quest %s not found", input.QuestID)
	}
	if input.ObjectiveIndex < 0 || input.ObjectiveIndex >= len(quest.Objectives) {
		c.mu.Unlock()
		return nil, errors.InvalidArgumentf("quest %s has no objective %d", input.QuestID, input.ObjectiveIndex)
	}
	if quest.Status != chimera.QuestStatusActive {
		c.mu.Unlock()
		return nil, errors.FailedPreconditionf("quest %s is %s", input.QuestID, quest.Status)
	}

	obj := &quest.Objectives[input.ObjectiveIndex]
	if !obj.Completed {
		obj.Completed = true
		ob.system(fmt.Sprintf("Objective complete: %s.", obj.Description))
	}
	if quest.AllObjectivesComplete() {
		quest.Status = chimera.QuestStatusCompleted
		ob.system(fmt.Sprintf("Quest complete: %s.", quest.Title))
	}
	out := &CompleteObjectiveOutput{Quest: quest.Clone()}
	c.mu.Unlock()

	c.flush(ctx, &ob)
	return out, nil
}
