package objects

import (
	"fmt"
	"sync"

	"github.com/KostasZigo/commitgraph/utils"
)

// MemorySource is a Source backed by a map of hash to compressed object bytes.
// It decodes exactly like LooseStore, so it stands in for a repository in tests.
type MemorySource struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemorySource() *MemorySource {
	return &MemorySource{objects: make(map[string][]byte)}
}

// Put stores compressed object bytes under hash.
func (m *MemorySource) Put(hash string, compressed []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[hash] = compressed
}

// Len returns the number of stored objects.
func (m *MemorySource) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

func (m *MemorySource) Read(hash string) (*RawObject, error) {
	if !utils.IsObjectHash(hash) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}

	m.mu.RLock()
	compressed, ok := m.objects[hash]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, hash)
	}

	return decodeLoose(hash, compressed, false)
}
