package maps

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// InMemoryRepository implements Repository over a fixed set of graphs
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*chimera.MapGraph
}

// NewInMemory creates a repository holding the given graphs. Every graph is
// validated; the first invalid one fails construction.
func NewInMemory(graphs ...*chimera.MapGraph) (*InMemoryRepository, error) {
	r := &InMemoryRepository{
		store: make(map[string]*chimera.MapGraph, len(graphs)),
	}
	for _, g := range graphs {
		if err := r.add(g); err != nil {
			return nil, err
		}
	}
	return r, nil
}

var _ Repository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) add(g *chimera.MapGraph) error {
	if g == nil {
		return errors.InvalidArgument("map is required")
	}
	if err := g.Validate(); err != nil {
		return errors.Wrapf(err, "map %s", g.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[g.ID]; exists {
		return errors.AlreadyExistsf("map %s already registered", g.ID)
	}
	r.store[g.ID] = g
	return nil
}

// Get retrieves a map by id
func (r *InMemoryRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.MapID == "" {
		return nil, errors.InvalidArgument("map ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	g, exists := r.store[input.MapID]
	if !exists {
		return nil, errors.NotFoundf("map %s not found", input.MapID)
	}

	return &GetOutput{Map: g}, nil
}

// List returns all maps ordered by id
func (r *InMemoryRepository) List(_ context.Context, _ *ListInput) (*ListOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*chimera.MapGraph, 0, len(r.store))
	for _, g := range r.store {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return &ListOutput{Maps: out}, nil
}
