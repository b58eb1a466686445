package token

import (
	"sync"
	"time"
)

// Denylist remembers access tokens revoked before their expiry, by jti.
type Denylist interface {
	Add(jti string, exp time.Time)
	IsRevoked(jti string) bool
	// Prune drops entries whose token would have expired anyway.
	Prune(now time.Time)
}

type memoryDenylist struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewMemoryDenylist() Denylist {
	return &memoryDenylist{revoked: make(map[string]time.Time)}
}

func (d *memoryDenylist) Add(jti string, exp time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[jti] = exp
}

func (d *memoryDenylist) IsRevoked(jti string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.revoked[jti]
	return ok
}

func (d *memoryDenylist) Prune(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for jti, exp := range d.revoked {
		if now.After(exp) {
			delete(d.revoked, jti)
		}
	}
}
