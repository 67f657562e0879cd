// Package maps provides lookup of map graphs by id
package maps

import (
	"context"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=mapsmock github.com/KirkDiggler/chimera-protocol/internal/repositories/maps Repository

// Repository returns map graphs. Returned graphs are shared and must be
// treated as read-only.
type Repository interface {
	// Get returns the graph with the given id or a NotFound error
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// List returns every known graph ordered by id
	List(ctx context.Context, input *ListInput) (*ListOutput, error)
}

// GetInput contains parameters for retrieving a map
type GetInput struct {
	MapID string
}

// GetOutput contains the retrieved map
type GetOutput struct {
	Map *chimera.MapGraph
}

// ListInput contains parameters for listing maps
type ListInput struct{}

// ListOutput contains all maps
type ListOutput struct {
	Maps []*chimera.MapGraph
}
