package attrcache

import (
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/jsloan/typedstream"
)

// defaultExpiration is how long a decoded-attributedBody entry lives in
// the cache. chat.db rows never change once written, so this mostly
// bounds memory use rather than guarding against staleness.
const defaultExpiration = 24 * time.Hour

// Cache stores decoded typedstream results in memcached, keyed by
// message GUID.
type Cache struct {
	client *memcache.Client
	codec  *Codec
}

// NewCache creates a Cache connected to the memcached server described
// by cfg, using the default flattened-framing+FastLZ codec ([NewCodec]).
func NewCache(cfg Config) (*Cache, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Memcached.Host, cfg.Memcached.Port)
	client := memcache.New(addr)
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("attrcache: ping %s: %w", addr, err)
	}
	return &Cache{client: client, codec: NewCodec()}, nil
}

// Get looks up the decoded records for key. ok is false on a cache miss;
// callers should then decode the raw attributedBody themselves and
// populate the cache with [Cache.Put].
func (c *Cache) Get(key string) (records []typedstream.Archivable, ok bool, err error) {
	item, err := c.client.Get(key)
	if err == memcache.ErrCacheMiss {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("attrcache: get %s: %w", key, err)
	}
	records, err = c.codec.Decode(item.Value, item.Flags)
	if err != nil {
		return nil, false, err
	}
	return records, true, nil
}

// Put stores the decoded records for key.
func (c *Cache) Put(key string, records []typedstream.Archivable) error {
	data, flags, err := c.codec.Encode(records)
	if err != nil {
		return err
	}
	item := &memcache.Item{Key: key, Value: data, Flags: flags, Expiration: int32(defaultExpiration.Seconds())}
	if err := c.client.Set(item); err != nil {
		return fmt.Errorf("attrcache: set %s: %w", key, err)
	}
	return nil
}
