package fabricate

import "sync"

// ProgramCache stores compiled expression programs keyed by expression
// strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache on the design.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *designConfig) {
		cfg.programCache = cache
	}
}

// MemoryProgramCache is an in-process ProgramCache safe for concurrent use.
type MemoryProgramCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMemoryProgramCache constructs an empty cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{
		programs: make(map[string]any),
	}
}

// Get implements ProgramCache.
func (c *MemoryProgramCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

// Set implements ProgramCache.
func (c *MemoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.programs == nil {
		c.programs = make(map[string]any)
	}
	c.programs[key] = value
}
