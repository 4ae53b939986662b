package cache

import (
	"sync"

	"github.com/callreview-team/call-review/internal/domain/entities"
)

// MemoryStore is a volatile snapshot cache used in tests and in
// deployments that deliberately opt out of local persistence.
type MemoryStore struct {
	mu      sync.RWMutex
	ratings []byte
	flags   []byte
	set     entities.MetricSet
}

// NewMemoryStore creates an empty in-memory snapshot cache.
func NewMemoryStore(set entities.MetricSet) *MemoryStore {
	return &MemoryStore{set: set}
}

func (ms *MemoryStore) LoadRatings() entities.RatingCollection {
	ms.mu.RLock()
	data := ms.ratings
	ms.mu.RUnlock()
	if data == nil {
		return make(entities.RatingCollection)
	}
	collection, err := decodeRatings(data, ms.set)
	if err != nil {
		return make(entities.RatingCollection)
	}
	return collection
}

func (ms *MemoryStore) SaveRatings(collection entities.RatingCollection) {
	data, err := encodeRatings(collection, ms.set)
	if err != nil {
		return
	}
	ms.mu.Lock()
	ms.ratings = data
	ms.mu.Unlock()
}

func (ms *MemoryStore) LoadFlags() map[string]bool {
	ms.mu.RLock()
	data := ms.flags
	ms.mu.RUnlock()
	if data == nil {
		return make(map[string]bool)
	}
	flags, err := decodeFlags(data)
	if err != nil {
		return make(map[string]bool)
	}
	return flags
}

func (ms *MemoryStore) SaveFlags(flags map[string]bool) {
	data, err := encodeFlags(flags)
	if err != nil {
		return
	}
	ms.mu.Lock()
	ms.flags = data
	ms.mu.Unlock()
}
