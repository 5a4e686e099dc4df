package adapter

import (
	"sync"
	"time"

	"github.com/google/uuid"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/tokens"
)

// CachedTokens is the last good token stream of a document.
type CachedTokens struct {
	ResultID  string         // Unique identifier for this token set
	Tokens    []tokens.Token // Sorted, not encoded
	Timestamp time.Time      // When this cache entry was created
}

// TokenCache keeps the last good semantic token stream per document. It is the
// baseline used to repair highlighting after a parse that failed.
type TokenCache struct {
	cache map[protocol.DocumentUri]*CachedTokens

	// mu protects concurrent access to the cache
	mu sync.RWMutex
}

// NewTokenCache creates an empty token cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{
		cache: make(map[protocol.DocumentUri]*CachedTokens),
	}
}

// NewResultID generates a unique result identifier for a token response.
func NewResultID() string {
	return uuid.NewString()
}

// Store replaces the cached stream of uri and returns the new entry.
func (c *TokenCache) Store(uri protocol.DocumentUri, toks []tokens.Token) *CachedTokens {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &CachedTokens{
		ResultID:  NewResultID(),
		Tokens:    toks,
		Timestamp: time.Now(),
	}
	c.cache[uri] = entry

	return entry
}

// Latest returns the cached stream of uri.
func (c *TokenCache) Latest(uri protocol.DocumentUri) (*CachedTokens, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, found := c.cache[uri]

	return cached, found
}

// Invalidate removes the cached stream of uri.
// This should be called when a document is closed.
func (c *TokenCache) Invalidate(uri protocol.DocumentUri) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, uri)
}

// Clear removes all cached streams.
func (c *TokenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[protocol.DocumentUri]*CachedTokens)
}

// Size returns the number of cached streams.
func (c *TokenCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.cache)
}
