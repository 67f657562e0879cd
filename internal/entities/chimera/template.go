package chimera

import (
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// Template is an immutable blueprint for characters. Instantiate copies every
// reference field so instances never share state with the template.
type Template struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Kind          string         `yaml:"kind"`
	Archetype     string         `yaml:"archetype,omitempty"`
	Description   string         `yaml:"description,omitempty"`
	Avatar        string         `yaml:"avatar,omitempty"`
	Stats         map[string]int `yaml:"stats"`
	MaxHP         int            `yaml:"max_hp"`
	Armor         int            `yaml:"armor"`
	Level         int            `yaml:"level"`
	Skills        map[string]int `yaml:"skills,omitempty"`
	Feats         []string       `yaml:"feats,omitempty"`
	Inventory     []Item         `yaml:"inventory,omitempty"`
	ActiveEffects []string       `yaml:"active_effects,omitempty"`
}

// Validate checks the template is usable
func (t *Template) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", t.ID, vb)
	errors.ValidateRequired("name", t.Name, vb)
	errors.ValidateEnum("kind", t.Kind, []string{KindPlayer, KindNPC}, vb)
	errors.ValidatePositive("max_hp", t.MaxHP, vb)
	errors.ValidatePositive("level", t.Level, vb)
	for _, it := range t.Inventory {
		if !it.Category.IsValid() {
			vb.Fieldf("inventory."+it.ID, "unknown category %q", it.Category)
		}
	}
	return vb.Build()
}

// Instantiate creates a live character from the template
func (t *Template) Instantiate(id, nodeID string) *Character {
	c := &Character{
		ID:            id,
		Name:          t.Name,
		Kind:          t.Kind,
		TemplateID:    t.ID,
		Avatar:        t.Avatar,
		Stats:         cloneIntMap(t.Stats),
		HP:            Pool{Current: t.MaxHP, Max: t.MaxHP},
		Armor:         t.Armor,
		Level:         t.Level,
		XP:            Progress{Current: 0, Next: t.Level * 1000},
		Skills:        cloneIntMap(t.Skills),
		Feats:         append([]string(nil), t.Feats...),
		Inventory:     cloneItems(t.Inventory),
		ActiveEffects: append([]string(nil), t.ActiveEffects...),
		IsAlive:       true,
		GridPos:       nodeID,
	}
	if c.Stats == nil {
		c.Stats = map[string]int{}
	}
	return c
}
