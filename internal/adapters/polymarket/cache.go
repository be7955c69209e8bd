package polymarket

import (
	"sync"
	"time"
)

// ttlCache es un cache en memoria con expiración por entrada. Las APIs
// públicas de Polymarket ratelimitean agresivo; cachear históricos, trades
// y holders unos minutos evita quemar el bucket cuando varios ciclos del
// scanner tocan los mismos mercados.
type ttlCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry[V]
}

type cacheEntry[V any] struct {
	value   V
	expires time.Time
}

func newTTLCache[V any](ttl time.Duration) *ttlCache[V] {
	return &ttlCache[V]{
		ttl:     ttl,
		entries: make(map[string]cacheEntry[V]),
	}
}

// get devuelve el valor cacheado y true si existe y no expiró.
// Las entradas vencidas se eliminan al consultarlas.
func (c *ttlCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *ttlCache[V]) set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[V]{value: value, expires: time.Now().Add(c.ttl)}
}
