package driver

import (
	"sync"

	"lumen/internal/project"
)

// minimal per-process cache by namespace + unit hash
type cached struct {
	key project.Digest
	art *UnitArtifact
}

// UnitCache keeps lowering artifacts in memory between builds of one
// process (for example repeated builds in tests or a watch loop).
type UnitCache struct {
	mu   sync.RWMutex
	byNS map[string]cached // key: namespace ("a.b")
}

// NewUnitCache creates a UnitCache with the given capacity hint.
func NewUnitCache(capHint int) *UnitCache {
	return &UnitCache{byNS: make(map[string]cached, capHint)}
}

// Get returns the artifact of namespace if it was stored under key.
func (c *UnitCache) Get(namespace string, key project.Digest) (*UnitArtifact, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	rec, ok := c.byNS[namespace]
	c.mu.RUnlock()
	if !ok || rec.key != key {
		return nil, false
	}
	return rec.art, true
}

// Put replaces the artifact of art.Namespace.
func (c *UnitCache) Put(key project.Digest, art *UnitArtifact) {
	if c == nil || art == nil {
		return
	}
	c.mu.Lock()
	c.byNS[art.Namespace] = cached{key: key, art: art}
	c.mu.Unlock()
}

// Len reports the number of cached namespaces.
func (c *UnitCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byNS)
}
