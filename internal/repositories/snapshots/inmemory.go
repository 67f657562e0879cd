package snapshots

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/clock"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	clock clock.Clock

	mu    sync.RWMutex
	store map[string]*Record
}

// NewInMemory creates a new in-memory repository
func NewInMemory(clk clock.Clock) *InMemoryRepository {
	if clk == nil {
		clk = clock.New()
	}
	return &InMemoryRepository{
		clock: clk,
		store: make(map[string]*Record),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Save stores a copy of the blob
func (r *InMemoryRepository) Save(_ context.Context, input *SaveInput) (*SaveOutput, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	rec := &Record{
		Slot:      input.Slot,
		SessionID: input.SessionID,
		SavedAt:   r.clock.Now().UTC(),
		Data:      append([]byte(nil), input.Data...),
	}

	r.mu.Lock()
	r.store[input.Slot] = rec
	r.mu.Unlock()

	return &SaveOutput{Summary: summarize(rec)}, nil
}

// Load returns a copy of the stored record
func (r *InMemoryRepository) Load(_ context.Context, input *LoadInput) (*LoadOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := ValidateSlot(input.Slot); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.store[input.Slot]
	if !ok {
		return nil, errors.NotFoundf("slot %s not found", input.Slot)
	}

	out := *rec
	out.Data = append([]byte(nil), rec.Data...)
	return &LoadOutput{Record: &out}, nil
}

// List returns all slots, most recent first
func (r *InMemoryRepository) List(_ context.Context, _ *ListInput) (*ListOutput, error) {
	r.mu.RLock()
	summaries := make([]*Summary, 0, len(r.store))
	for _, rec := range r.store {
		summaries = append(summaries, summarize(rec))
	}
	r.mu.RUnlock()

	sortSummaries(summaries)
	return &ListOutput{Summaries: summaries}, nil
}

// Delete removes a slot
func (r *InMemoryRepository) Delete(_ context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := ValidateSlot(input.Slot); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[input.Slot]; !ok {
		return nil, errors.NotFoundf("slot %s not found", input.Slot)
	}
	delete(r.store, input.Slot)

	return &DeleteOutput{}, nil
}

func summarize(rec *Record) *Summary {
	return &Summary{
		Slot:      rec.Slot,
		SessionID: rec.SessionID,
		SavedAt:   rec.SavedAt,
		Size:      len(rec.Data),
	}
}

// sortSummaries orders by save time descending, then slot name
func sortSummaries(s []*Summary) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].SavedAt.Equal(s[j].SavedAt) {
			return s[i].SavedAt.After(s[j].SavedAt)
		}
		return s[i].Slot < s[j].Slot
	})
}
