package oauth

import (
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// DefaultRefreshMargin is how long before expiry a cached token is replaced.
const DefaultRefreshMargin = 60 * time.Second

// Cache reuses a token from base until it is within margin of expiry.
// Invalidate forgets the cached token, e.g. after the provider answered 401.
type Cache struct {
	base   oauth2.TokenSource
	margin time.Duration

	mu sync.Mutex
	ts oauth2.TokenSource
}

// NewCache wraps base. A non-positive margin uses DefaultRefreshMargin.
func NewCache(base oauth2.TokenSource, margin time.Duration) *Cache {
	if margin <= 0 {
		margin = DefaultRefreshMargin
	}

	return &Cache{
		base:   base,
		margin: margin,
		ts:     oauth2.ReuseTokenSourceWithExpiry(nil, base, margin),
	}
}

// Token returns a valid token, fetching a new one only when needed.
func (c *Cache) Token() (*oauth2.Token, error) {
	c.mu.Lock()
	ts := c.ts
	c.mu.Unlock()

	return ts.Token()
}

// AccessToken returns just the bearer value.
func (c *Cache) AccessToken() (string, error) {
	tok, err := c.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.ts = oauth2.ReuseTokenSourceWithExpiry(nil, c.base, c.margin)
	c.mu.Unlock()
}
