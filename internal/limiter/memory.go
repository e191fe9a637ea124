package limiter

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	fails        int
	blockedUntil time.Time
	updatedAt    time.Time
}

// Memory is a process-local limiter used by backends without a shared SQL store.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*memEntry
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

// NewMemory constructs an in-process limiter with the same semantics as PG.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	return &Memory{
		entries:  map[string]*memEntry{},
		window:   window,
		maxFails: maxFails,
		blockFor: blockFor,
		now:      time.Now,
	}
}

func key(email string, ipHash []byte) string { return email + "\x00" + string(ipHash) }

// Allow reports whether login is currently allowed.
func (m *Memory) Allow(_ context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key(email, ipHash)]
	if !ok {
		return true, 0, nil
	}
	now := m.now()
	if e.blockedUntil.After(now) {
		return false, e.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success forgets the failure history.
func (m *Memory) Success(_ context.Context, email string, ipHash []byte) error {
	m.mu.Lock()
	delete(m.entries, key(email, ipHash))
	m.mu.Unlock()
	return nil
}

// Failure records a failed attempt and blocks once maxFails is reached within window.
func (m *Memory) Failure(_ context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	k := key(email, ipHash)
	e, ok := m.entries[k]
	if !ok || now.Sub(e.updatedAt) > m.window {
		e = &memEntry{}
		m.entries[k] = e
	}
	e.fails++
	e.updatedAt = now
	if e.fails >= m.maxFails {
		e.blockedUntil = now.Add(m.blockFor)
		return true, m.blockFor, nil
	}
	return false, 0, nil
}
