package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client is the subset of go-redis the snapshot store relies on. Both
// *redis.Client and *redis.ClusterClient satisfy it.
type Client interface {
	redis.UniversalClient
}

// Nil is returned by reads of a missing key
const Nil = redis.Nil
