// Package snapshots stores encoded session snapshots under named save slots
package snapshots

import (
	"context"
	"regexp"
	"time"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=snapshotsmock github.com/KirkDiggler/chimera-protocol/internal/repositories/snapshots Repository

// Repository persists snapshot blobs. Blobs are opaque to the store.
type Repository interface {
	// Save writes the blob to the slot, replacing any previous save
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)
	Load(ctx context.Context, input *LoadInput) (*LoadOutput, error)
	// List returns slot summaries, most recent first
	List(ctx context.Context, input *ListInput) (*ListOutput, error)
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

// Record is one saved slot
type Record struct {
	Slot      string
	SessionID string
	SavedAt   time.Time
	Data      []byte
}

// Summary describes a slot without its payload
type Summary struct {
	Slot      string
	SessionID string
	SavedAt   time.Time
	Size      int
}

// SaveInput contains the blob to store
type SaveInput struct {
	Slot      string
	SessionID string
	Data      []byte
}

// SaveOutput contains the stored record summary
type SaveOutput struct {
	Summary *Summary
}

// LoadInput identifies a slot
type LoadInput struct {
	Slot string
}

// LoadOutput contains the stored record
type LoadOutput struct {
	Record *Record
}

// ListInput contains list parameters
type ListInput struct{}

// ListOutput contains slot summaries
type ListOutput struct {
	Summaries []*Summary
}

// DeleteInput identifies a slot
type DeleteInput struct {
	Slot string
}

// DeleteOutput is empty on success
type DeleteOutput struct{}

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateSlot checks a slot name
func ValidateSlot(slot string) error {
	if slot == "" {
		return errors.InvalidArgument("slot is required")
	}
	if !slotPattern.MatchString(slot) {
		return errors.InvalidArgumentf("slot %q must be 1-64 letters, digits, '-' or '_'", slot)
	}
	return nil
}

func (in *SaveInput) validate() error {
	if in == nil {
		return errors.InvalidArgument("input is required")
	}
	if err := ValidateSlot(in.Slot); err != nil {
		return err
	}
	if len(in.Data) == 0 {
		return errors.InvalidArgument("data is required")
	}
	return nil
}
