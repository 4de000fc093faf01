package cache

import (
	"context"
	"sync"
	"time"

	"github.com/viccon/sturdyc"
)

const (
	memoryCapacity           = 10000
	memoryShards             = 64
	memoryMinPerShard        = 32
	memoryEvictionPercentage = 10
)

// MemoryBackend es un caché en proceso sobre sturdyc. sturdyc fija el TTL por
// cliente, así que se mantiene un cliente por cada TTL usado.
type MemoryBackend struct {
	mu       sync.RWMutex
	capacity int
	clients  map[time.Duration]*sturdyc.Client[[]byte]
}

func NewMemoryBackend(capacity int) *MemoryBackend {
	if capacity <= 0 {
		capacity = memoryCapacity
	}
	return &MemoryBackend{
		capacity: capacity,
		clients:  make(map[time.Duration]*sturdyc.Client[[]byte]),
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		if val, ok := client.Get(key); ok {
			return val, nil
		}
	}
	return nil, ErrCacheMiss
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.client(ttl).Set(key, value)
	return nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close() error { return nil }

// Size retorna el número de entradas entre todos los clientes
func (m *MemoryBackend) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, client := range m.clients {
		total += client.Size()
	}
	return total
}

func (m *MemoryBackend) client(ttl time.Duration) *sturdyc.Client[[]byte] {
	m.mu.RLock()
	client, ok := m.clients[ttl]
	m.mu.RUnlock()
	if ok {
		return client
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if client, ok := m.clients[ttl]; ok {
		return client
	}
	client = sturdyc.New[[]byte](m.capacity, shardsFor(m.capacity), ttl, memoryEvictionPercentage)
	m.clients[ttl] = client
	return client
}

// shardsFor evita shards diminutos con capacidades bajas: sturdyc reparte la
// capacidad entre shards y desaloja por shard
func shardsFor(capacity int) int {
	return max(1, min(memoryShards, capacity/memoryMinPerShard))
}
