// Package attrcache caches decoded typedstream results in memcached.
//
// Decoding an attributedBody blob is pure CPU work over a buffer that
// never changes once written, which makes it a natural fit for a
// write-once cache keyed by message GUID. This package is the mirror
// image of a PHP-memcached-style read codec: instead of decompressing
// and deserializing on the way out, it serializes and compresses on the
// way in, storing a flags word alongside the value exactly the way the
// PHP memcached extension does, so a cache populated by this package
// stays readable by any compatible reader.
//
// # Quick Start
//
//	cache, err := attrcache.NewCache(attrcache.Config{Memcached: attrcache.MemcachedConfig{
//	    Host: "localhost",
//	    Port: 11211,
//	}})
//	records, ok, err := cache.Get(msg.GUID)
//	if !ok {
//	    records, err = typedstream.Decode(msg.AttributedBody)
//	    err = cache.Put(msg.GUID, records)
//	}
package attrcache
