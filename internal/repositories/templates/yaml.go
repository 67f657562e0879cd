package templates

import (
	"context"
	_ "embed"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

//go:embed data/templates.yaml
var builtin []byte

type document struct {
	Templates []*chimera.Template `yaml:"templates"`
}

type yamlRepository struct {
	byID map[string]*chimera.Template
}

// LoadBuiltin returns the templates shipped with the binary
func LoadBuiltin() (Repository, error) {
	return Parse(builtin)
}

// Parse builds a repository from a YAML document with a top-level
// templates list
func Parse(raw []byte) (Repository, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "malformed template document")
	}

	r := &yamlRepository{byID: make(map[string]*chimera.Template, len(doc.Templates))}
	for _, t := range doc.Templates {
		if t == nil {
			continue
		}
		if err := t.Validate(); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "invalid template "+t.ID)
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, errors.DataIntegrityf("duplicate template %s", t.ID)
		}
		r.byID[t.ID] = t
	}

	return r, nil
}

func (r *yamlRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.TemplateID == "" {
		return nil, errors.InvalidArgument("template ID is required")
	}

	t, ok := r.byID[input.TemplateID]
	if !ok {
		return nil, errors.NotFoundf("template %s not found", input.TemplateID)
	}
	return &GetOutput{Template: t}, nil
}

func (r *yamlRepository) List(_ context.Context, input *ListInput) (*ListOutput, error) {
	kind := ""
	if input != nil {
		kind = input.Kind
	}

	out := make([]*chimera.Template, 0, len(r.byID))
	for _, t := range r.byID {
		if kind != "" && t.Kind != kind {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return &ListOutput{Templates: out}, nil
}
