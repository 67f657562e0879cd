package chimera

import (
	"github.com/KirkDiggler/rpg-toolkit/core"
)

// MaxAvatarHistory bounds Character.AvatarHistory
const MaxAvatarHistory = 5

// PlayerCombatantID is the reserved combatant id of the player character
const PlayerCombatantID = "player"

// Character kinds, reported through core.Entity.GetType
const (
	KindPlayer = "player"
	KindNPC    = "npc"
)

// Pool is a current/max pair. Current stays within [0, Max].
type Pool struct {
	Current int `json:"current" yaml:"current"`
	Max     int `json:"max" yaml:"max"`
}

// Progress tracks experience toward the next level
type Progress struct {
	Current int `json:"current" yaml:"current"`
	Next    int `json:"next" yaml:"next"`
}

// Character is the runtime stat block of the player or an NPC
type Character struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	TemplateID string `json:"template_id,omitempty"`

	Avatar        string   `json:"avatar,omitempty"`
	AvatarHistory []string `json:"avatar_history,omitempty"`

	Stats         map[string]int `json:"stats"`
	HP            Pool           `json:"hp"`
	Armor         int            `json:"armor"`
	Level         int            `json:"level"`
	XP            Progress       `json:"xp"`
	Skills        map[string]int `json:"skills,omitempty"`
	Feats         []string       `json:"feats,omitempty"`
	Inventory     []Item         `json:"inventory,omitempty"`
	ActiveEffects []string       `json:"active_effects,omitempty"`
	IsAlive       bool           `json:"is_alive"`

	// GridPos is the id of the node the character stands on in the current map
	GridPos string `json:"grid_pos"`
}

// GetID implements core.Entity
func (c *Character) GetID() string {
	return c.ID
}

// GetType implements core.Entity
func (c *Character) GetType() string {
	return c.Kind
}

var _ core.Entity = (*Character)(nil)

// SetHP sets current hit points, clamped to [0, HP.Max]. A character at zero
// is no longer alive.
func (c *Character) SetHP(current int) {
	if current < 0 {
		current = 0
	}
	if current > c.HP.Max {
		current = c.HP.Max
	}
	c.HP.Current = current
	c.IsAlive = current > 0
}

// Damage reduces hit points by n
func (c *Character) Damage(n int) {
	c.SetHP(c.HP.Current - n)
}

// Heal restores hit points by n
func (c *Character) Heal(n int) {
	c.SetHP(c.HP.Current + n)
}

// PushAvatar makes ref the current avatar and records it in the bounded
// history, dropping the oldest entries beyond MaxAvatarHistory.
func (c *Character) PushAvatar(ref string) {
	c.Avatar = ref
	c.AvatarHistory = append(c.AvatarHistory, ref)
	if over := len(c.AvatarHistory) - MaxAvatarHistory; over > 0 {
		c.AvatarHistory = append([]string(nil), c.AvatarHistory[over:]...)
	}
}

// Modifier returns the d20-style modifier for a stat, floor((score-10)/2).
// Missing stats count as 10.
func (c *Character) Modifier(stat string) int {
	score, ok := c.Stats[stat]
	if !ok {
		return 0
	}
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// Clone returns a deep copy
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	out := *c
	out.AvatarHistory = append([]string(nil), c.AvatarHistory...)
	out.Stats = cloneIntMap(c.Stats)
	out.Skills = cloneIntMap(c.Skills)
	out.Feats = append([]string(nil), c.Feats...)
	out.ActiveEffects = append([]string(nil), c.ActiveEffects...)
	out.Inventory = cloneItems(c.Inventory)
	return &out
}

func cloneIntMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it
		if it.Combat != nil {
			combat := *it.Combat
			out[i].Combat = &combat
		}
	}
	return out
}
