// Package prompts loads the persona system prompts and the step prompts the
// session sends to the AI services.
package prompts

import (
	_ "embed"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

//go:embed personas.toml
var builtin []byte

// Persona is the system prompt of one AI voice
type Persona struct {
	System string `toml:"system"`
}

// Steps are the per-step prompt templates
type Steps struct {
	Archetypes       string `toml:"archetypes"`
	PlayerChoice     string `toml:"player_choice"`
	Avatar           string `toml:"avatar"`
	IncitingIncident string `toml:"inciting_incident"`
	Turn             string `toml:"turn"`
	PlayerAction     string `toml:"player_action"`
	NoAction         string `toml:"no_action"`
}

// Set is a full prompt configuration
type Set struct {
	DM       Persona `toml:"dm"`
	PlayerAI Persona `toml:"player_ai"`
	Steps    Steps   `toml:"steps"`
}

// Validate checks every prompt is present
func (s *Set) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("dm.system", s.DM.System, vb)
	errors.ValidateRequired("player_ai.system", s.PlayerAI.System, vb)
	errors.ValidateRequired("steps.archetypes", s.Steps.Archetypes, vb)
	errors.ValidateRequired("steps.player_choice", s.Steps.PlayerChoice, vb)
	errors.ValidateRequired("steps.avatar", s.Steps.Avatar, vb)
	errors.ValidateRequired("steps.inciting_incident", s.Steps.IncitingIncident, vb)
	errors.ValidateRequired("steps.turn", s.Steps.Turn, vb)
	errors.ValidateRequired("steps.player_action", s.Steps.PlayerAction, vb)
	errors.ValidateRequired("steps.no_action", s.Steps.NoAction, vb)
	return vb.Build()
}

// Default returns the built-in prompt set
func Default() *Set {
	s, err := Parse(builtin)
	if err != nil {
		panic("embedded personas.toml is invalid: " + err.Error())
	}
	return s
}

// Load reads a prompt set from a TOML file. Missing keys fall back to the
// built-in prompts.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read prompts file %s", path)
	}
	return parseOver(Default(), data)
}

// Parse decodes a complete prompt set
func Parse(data []byte) (*Set, error) {
	return parseOver(&Set{}, data)
}

func parseOver(base *Set, data []byte) (*Set, error) {
	s := *base
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse prompts TOML")
	}
	s.trim()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Set) trim() {
	for _, p := range []*string{
		&s.DM.System, &s.PlayerAI.System,
		&s.Steps.Archetypes, &s.Steps.PlayerChoice, &s.Steps.Avatar, &s.Steps.IncitingIncident,
		&s.Steps.Turn, &s.Steps.PlayerAction, &s.Steps.NoAction,
	} {
		*p = strings.TrimSpace(*p)
	}
}

// Render substitutes {{key}} placeholders. Unknown placeholders are left as is.
func Render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
