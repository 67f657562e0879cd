// Package templates provides the character blueprints used to create the
// player and spawn NPCs
package templates

import (
	"context"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=templatesmock github.com/KirkDiggler/chimera-protocol/internal/repositories/templates Repository

// Repository returns character templates. Templates are shared; callers
// create characters through Template.Instantiate.
type Repository interface {
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// List returns templates of the given kind, or all templates when Kind is empty
	List(ctx context.Context, input *ListInput) (*ListOutput, error)
}

// GetInput contains parameters for retrieving a template
type GetInput struct {
	TemplateID string
}

// GetOutput contains the retrieved template
type GetOutput struct {
	Template *chimera.Template
}

// ListInput filters the listing
type ListInput struct {
	Kind string
}

// ListOutput contains matching templates ordered by id
type ListOutput struct {
	Templates []*chimera.Template
}
