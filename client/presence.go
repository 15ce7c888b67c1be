package client

import "sync"

// PresenceStatus is what the map knows about one user. Absence from the
// map means unknown, not offline.
type PresenceStatus struct {
	IsOnline bool
	LastSeen string
}

// PresenceMap folds userStatusChanged events into per-user state,
// last-write-wins per user in arrival order. It is owned by the socket's
// dispatch; consumers read copies and never mutate it.
type PresenceMap struct {
	mu     sync.RWMutex
	byUser map[string]PresenceStatus
}

func NewPresenceMap() *PresenceMap {
	return &PresenceMap{byUser: make(map[string]PresenceStatus)}
}

// Apply folds one event into the map.
func (p *PresenceMap) Apply(ev StatusEvent) {
	p.mu.Lock()
	p.byUser[ev.UserID] = PresenceStatus{IsOnline: ev.IsOnline, LastSeen: ev.LastSeen}
	p.mu.Unlock()
}

// Get reports the known status of a user; ok is false when unknown.
func (p *PresenceMap) Get(userID string) (PresenceStatus, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	st, ok := p.byUser[userID]
	return st, ok
}

// Snapshot returns a copy of the whole map.
func (p *PresenceMap) Snapshot() map[string]PresenceStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]PresenceStatus, len(p.byUser))
	for id, st := range p.byUser {
		out[id] = st
	}
	return out
}
