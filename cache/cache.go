package cache

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tictactoe/config"
	"github.com/domino14/tictactoe/zobrist"
)

// The cache holds objects that are expensive to build and safe to share
// between games, so that a long-running service builds them once. Hash
// tables are the main tenant: a seeded table is fully determined by its
// capacity and seed.

type cache struct {
	sync.Mutex
	objects map[string]any
}

type loadFunc func(cfg *config.Config, key string) (any, error)

var GlobalObjectCache *cache

func (c *cache) get(cfg *config.Config, key string, loadFunc loadFunc) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting-obj-from-cache")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("loading-into-cache")
	obj, err := loadFunc(cfg, key)
	if err != nil {
		return nil, err
	}
	c.objects[key] = obj
	return obj, nil
}

func CreateGlobalObjectCache() {
	GlobalObjectCache = &cache{objects: make(map[string]any)}
}

// Load returns the object cached under key, calling loadFunc to build it
// on first use.
func Load(cfg *config.Config, key string, loadFunc loadFunc) (any, error) {
	if GlobalObjectCache == nil {
		CreateGlobalObjectCache()
	}
	return GlobalObjectCache.get(cfg, key, loadFunc)
}

func hashTableKey(capacity int, seed int64) string {
	return fmt.Sprintf("zobrist:%d:%d", capacity, seed)
}

// HashTable returns a shared table of the given capacity built from the
// configured hash seed. Tables are read-only once built; boards copy
// them before handing them to another goroutine. A zero seed is never
// cached since every such table is different.
func HashTable(cfg *config.Config, capacity int) (*zobrist.HashTable, error) {
	seed := cfg.GetInt64(config.ConfigHashSeed)
	if seed == 0 {
		return zobrist.NewHashTable(capacity, zobrist.NewSource(0)), nil
	}
	obj, err := Load(cfg, hashTableKey(capacity, seed), func(cfg *config.Config, key string) (any, error) {
		if capacity < 1 {
			return nil, fmt.Errorf("invalid hash table capacity %d", capacity)
		}
		return zobrist.NewHashTable(capacity, zobrist.NewSource(seed)), nil
	})
	if err != nil {
		return nil, err
	}
	return obj.(*zobrist.HashTable), nil
}
