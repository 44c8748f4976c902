package lock

import (
	"context"
	"sync"
)

// MemoryLocker serializes per-account critical sections within a single
// process using one mutex per account.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *MemoryLocker) LockAccounts(_ context.Context, a, b string) (func(), error) {
	first, second := orderAccounts(a, b)

	firstMu := l.mutexFor(first)
	firstMu.Lock()
	if second == first {
		return firstMu.Unlock, nil
	}
	secondMu := l.mutexFor(second)
	secondMu.Lock()

	return func() {
		secondMu.Unlock()
		firstMu.Unlock()
	}, nil
}

func (l *MemoryLocker) mutexFor(account string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	mu, ok := l.locks[account]
	if !ok {
		mu = &sync.Mutex{}
		l.locks[account] = mu
	}
	return mu
}

// orderAccounts fixes the acquisition order so two transfers touching the
// same pair of accounts cannot deadlock.
func orderAccounts(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
