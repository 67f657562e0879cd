package snapshots

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/chimera-protocol/internal/redis"
)

const (
	// Key pattern: {prefix}snapshot:{slot} holds a hash, {prefix}snapshots indexes slots by save time
	defaultKeyPrefix = "chimera:"

	fieldSessionID = "session_id"
	fieldSavedAt   = "saved_at"
	fieldSize      = "size"
	fieldData      = "data"
)

// RedisConfig holds the configuration for the Redis repository
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
	// TTL expires saves; zero keeps them forever
	TTL       time.Duration
	KeyPrefix string
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.TTL < 0 {
		vb.Field("TTL", "must not be negative")
	}
	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	ttl    time.Duration
	prefix string
}

// NewRedis creates a Redis-backed snapshot repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
		ttl:    cfg.TTL,
		prefix: prefix,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) slotKey(slot string) string {
	return r.prefix + "snapshot:" + slot
}

func (r *redisRepository) indexKey() string {
	return r.prefix + "snapshots"
}

// Save writes the slot hash and its index entry in one transaction
func (r *redisRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	savedAt := r.clock.Now().UTC()
	key := r.slotKey(input.Slot)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldSessionID, input.SessionID,
			fieldSavedAt, savedAt.Format(time.RFC3339Nano),
			fieldSize, len(input.Data),
			fieldData, input.Data,
		)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(savedAt.UnixMilli()), Member: input.Slot})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save slot %s", input.Slot)
	}

	return &SaveOutput{Summary: &Summary{
		Slot:      input.Slot,
		SessionID: input.SessionID,
		SavedAt:   savedAt,
		Size:      len(input.Data),
	}}, nil
}

// Load reads a slot hash
func (r *redisRepository) Load(ctx context.Context, input *LoadInput) (*LoadOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := ValidateSlot(input.Slot); err != nil {
		return nil, err
	}

	fields, err := r.client.HGetAll(ctx, r.slotKey(input.Slot)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load slot %s", input.Slot)
	}
	if len(fields) == 0 {
		return nil, errors.NotFoundf("slot %s not found", input.Slot)
	}

	savedAt, err := time.Parse(time.RFC3339Nano, fields[fieldSavedAt])
	if err != nil {
		return nil, errors.DataIntegrityf("slot %s has a corrupt save time", input.Slot)
	}

	return &LoadOutput{Record: &Record{
		Slot:      input.Slot,
		SessionID: fields[fieldSessionID],
		SavedAt:   savedAt,
		Data:      []byte(fields[fieldData]),
	}}, nil
}

// List reads the index and the summary fields of every slot. Index entries
// whose hash has expired are pruned.
func (r *redisRepository) List(ctx context.Context, _ *ListInput) (*ListOutput, error) {
	slots, err := r.client.ZRevRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list slots")
	}
	if len(slots) == 0 {
		return &ListOutput{Summaries: []*Summary{}}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(slots))
	for i, slot := range slots {
		cmds[i] = pipe.HMGet(ctx, r.slotKey(slot), fieldSessionID, fieldSavedAt, fieldSize)
	}
	if _, err := pipe.Exec(ctx); err != nil && !stderrors.Is(err, redis.Nil) {
		return nil, errors.Wrap(err, "failed to read slot summaries")
	}

	summaries := make([]*Summary, 0, len(slots))
	var expired []interface{}
	for i, cmd := range cmds {
		vals, err := cmd.Result()
		if err != nil || len(vals) != 3 || vals[1] == nil {
			expired = append(expired, slots[i])
			continue
		}
		sessionID, _ := vals[0].(string)
		rawSavedAt, _ := vals[1].(string)
		rawSize, _ := vals[2].(string)

		savedAt, err := time.Parse(time.RFC3339Nano, rawSavedAt)
		if err != nil {
			return nil, errors.DataIntegrityf("slot %s has a corrupt save time", slots[i])
		}
		size, _ := strconv.Atoi(rawSize)
		summaries = append(summaries, &Summary{Slot: slots[i], SessionID: sessionID, SavedAt: savedAt, Size: size})
	}

	if len(expired) > 0 {
		if err := r.client.ZRem(ctx, r.indexKey(), expired...).Err(); err != nil {
			return nil, errors.Wrap(err, "failed to prune expired slots")
		}
	}

	sortSummaries(summaries)
	return &ListOutput{Summaries: summaries}, nil
}

// Delete removes a slot and its index entry
func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := ValidateSlot(input.Slot); err != nil {
		return nil, err
	}

	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.slotKey(input.Slot))
		pipe.ZRem(ctx, r.indexKey(), input.Slot)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete slot %s", input.Slot)
	}
	if del.Val() == 0 {
		return nil, errors.NotFoundf("slot %s not found", input.Slot)
	}

	return &DeleteOutput{}, nil
}
